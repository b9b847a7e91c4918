package store

import (
	"time"

	"github.com/blackwell-systems/workclock/internal/apperr"
)

// AppendEvent records a lock or unlock against a session.
func (db *DB) AppendEvent(sessionID int64, eventType EventType, at time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO lock_events (session_id, event_type, timestamp) VALUES (?, ?, ?)",
		sessionID, string(eventType), formatTime(at),
	)
	return apperr.Storage("append event", err)
}

// EventsForDate returns the lock/unlock events recorded against sessions of
// the given kind dated date, oldest first.
func (db *DB) EventsForDate(date string, kind Kind) ([]LockEvent, error) {
	rows, err := db.conn.Query(
		`SELECT e.id, e.session_id, e.event_type, e.timestamp
		 FROM lock_events e JOIN sessions s ON s.id = e.session_id
		 WHERE s.date = ? AND s.kind = ?
		 ORDER BY e.timestamp, e.id`,
		date, string(kind),
	)
	if err != nil {
		return nil, apperr.Storage("events for date", err)
	}
	defer func() { _ = rows.Close() }()

	var events []LockEvent
	for rows.Next() {
		var e LockEvent
		var eventType, ts string
		if err := rows.Scan(&e.ID, &e.SessionID, &eventType, &ts); err != nil {
			return nil, apperr.Storage("events for date", err)
		}
		e.EventType = EventType(eventType)
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	return events, apperr.Storage("events for date", rows.Err())
}
