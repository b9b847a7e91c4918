package store

import (
	"database/sql"
	"time"

	"github.com/blackwell-systems/workclock/internal/apperr"
)

const sessionColumns = `id, kind, date, status, total_seconds, last_tick, notified,
	last_break_notify, start_time, end_time`

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var kind, status, lastTick, startTime string
	var endTime sql.NullString
	err := row.Scan(&s.ID, &kind, &s.Date, &status, &s.TotalSeconds, &lastTick,
		&s.Notified, &s.LastBreakNotify, &startTime, &endTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Kind = Kind(kind)
	s.Status = Status(status)
	s.LastTick = parseTime(lastTick)
	s.StartTime = parseTime(startTime)
	if endTime.Valid {
		t := parseTime(endTime.String)
		s.EndTime = &t
	}
	return &s, nil
}

// CreateSession inserts a new active session of the given kind dated date,
// with zero seconds and last_tick = now.
func (db *DB) CreateSession(kind Kind, date string, now time.Time) (*Session, error) {
	ts := formatTime(now)
	result, err := db.conn.Exec(
		`INSERT INTO sessions (kind, date, status, total_seconds, last_tick, start_time)
		 VALUES (?, ?, 'active', 0, ?, ?)`,
		string(kind), date, ts, ts,
	)
	if err != nil {
		return nil, apperr.Storage("create session", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("create session", err)
	}
	return db.GetSession(id)
}

// GetSession returns a session by ID, or nil if it does not exist.
func (db *DB) GetSession(id int64) (*Session, error) {
	s, err := scanSession(db.conn.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	return s, apperr.Storage("get session", err)
}

// OpenSession returns the most recently created non-completed session of the
// given kind, or nil if there is none.
func (db *DB) OpenSession(kind Kind) (*Session, error) {
	s, err := scanSession(db.conn.QueryRow(
		"SELECT "+sessionColumns+` FROM sessions
		 WHERE kind = ? AND status != 'completed'
		 ORDER BY id DESC LIMIT 1`,
		string(kind),
	))
	return s, apperr.Storage("open session", err)
}

// AutomaticSession resolves the automatic session for date, creating it if
// absent. Creating a day's session completes any open automatic session from
// an earlier date; the new session starts paused when the one it supersedes
// was paused (the screen stayed locked across midnight), otherwise active.
func (db *DB) AutomaticSession(date string, now time.Time) (*Session, error) {
	s, err := automaticForDate(db.conn, date)
	if err != nil || s != nil {
		return s, apperr.Storage("automatic session", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, apperr.Storage("automatic session", err)
	}
	defer tx.Rollback()

	status := StatusActive
	prev, err := scanSession(tx.QueryRow(
		"SELECT "+sessionColumns+` FROM sessions
		 WHERE kind = 'automatic' AND status != 'completed' AND date < ?
		 ORDER BY date DESC, id DESC LIMIT 1`,
		date,
	))
	if err != nil {
		return nil, apperr.Storage("automatic session", err)
	}
	if prev != nil && prev.Status == StatusPaused {
		status = StatusPaused
	}

	ts := formatTime(now)
	if _, err := tx.Exec(
		`UPDATE sessions SET status = 'completed', end_time = ?
		 WHERE kind = 'automatic' AND status != 'completed' AND date < ?`,
		ts, date,
	); err != nil {
		return nil, apperr.Storage("automatic session", err)
	}

	// The unique index on automatic dates turns a concurrent creator into a no-op.
	if _, err := tx.Exec(
		`INSERT INTO sessions (kind, date, status, total_seconds, last_tick, start_time)
		 VALUES ('automatic', ?, ?, 0, ?, ?)
		 ON CONFLICT DO NOTHING`,
		date, string(status), ts, ts,
	); err != nil {
		return nil, apperr.Storage("automatic session", err)
	}

	s, err = automaticForDate(tx, date)
	if err != nil {
		return nil, apperr.Storage("automatic session", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage("automatic session", err)
	}
	return s, nil
}

func automaticForDate(q queryRower, date string) (*Session, error) {
	return scanSession(q.QueryRow(
		"SELECT "+sessionColumns+" FROM sessions WHERE kind = 'automatic' AND date = ? LIMIT 1",
		date,
	))
}

// Advance credits u.Credit seconds to an active session and moves its
// last_tick to u.Tick in a single statement. It reports false without
// error when the guard (active, last_tick == u.ExpectedTick) no longer holds.
func (db *DB) Advance(u Update) (bool, error) {
	result, err := db.conn.Exec(
		`UPDATE sessions SET total_seconds = total_seconds + ?, last_tick = ?
		 WHERE id = ? AND status = 'active' AND last_tick = ?`,
		u.Credit, formatTime(u.Tick), u.ID, formatTime(u.ExpectedTick),
	)
	return affectedOne("advance session", result, err)
}

// Transition sets a session's status, credits u.Credit seconds and moves
// last_tick to u.Tick in a single statement. EndTime, when set, is recorded
// as the session's end. It reports false without error when the session is
// completed or its last_tick no longer equals u.ExpectedTick.
func (db *DB) Transition(u Update) (bool, error) {
	var endTime any
	if u.EndTime != nil {
		endTime = formatTime(*u.EndTime)
	}
	result, err := db.conn.Exec(
		`UPDATE sessions
		 SET total_seconds = total_seconds + ?, status = ?, last_tick = ?,
		     end_time = COALESCE(?, end_time)
		 WHERE id = ? AND status != 'completed' AND last_tick = ?`,
		u.Credit, string(u.Status), formatTime(u.Tick), endTime, u.ID, formatTime(u.ExpectedTick),
	)
	return affectedOne("transition session", result, err)
}

// ClaimGoalNotification marks the session as notified. It returns true only
// for the caller that flipped the flag, so the goal fires once per session.
func (db *DB) ClaimGoalNotification(id int64) (bool, error) {
	result, err := db.conn.Exec("UPDATE sessions SET notified = true WHERE id = ? AND notified = false", id)
	return affectedOne("claim goal notification", result, err)
}

// ClaimBreakReminder moves last_break_notify from prev to total. It returns
// true only when the stored value still equalled prev.
func (db *DB) ClaimBreakReminder(id, prev, total int64) (bool, error) {
	result, err := db.conn.Exec(
		"UPDATE sessions SET last_break_notify = ? WHERE id = ? AND last_break_notify = ?",
		total, id, prev,
	)
	return affectedOne("claim break reminder", result, err)
}

// ListSessions returns the sessions dated date, oldest first.
func (db *DB) ListSessions(date string) ([]Session, error) {
	rows, err := db.conn.Query(
		"SELECT "+sessionColumns+" FROM sessions WHERE date = ? ORDER BY id",
		date,
	)
	if err != nil {
		return nil, apperr.Storage("list sessions", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var s Session
		var kind, status, lastTick, startTime string
		var endTime sql.NullString
		if err := rows.Scan(&s.ID, &kind, &s.Date, &status, &s.TotalSeconds, &lastTick,
			&s.Notified, &s.LastBreakNotify, &startTime, &endTime); err != nil {
			return nil, apperr.Storage("list sessions", err)
		}
		s.Kind = Kind(kind)
		s.Status = Status(status)
		s.LastTick = parseTime(lastTick)
		s.StartTime = parseTime(startTime)
		if endTime.Valid {
			t := parseTime(endTime.String)
			s.EndTime = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, apperr.Storage("list sessions", rows.Err())
}

func affectedOne(op string, result sql.Result, err error) (bool, error) {
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	return n == 1, nil
}
