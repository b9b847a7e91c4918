package store

import "github.com/blackwell-systems/workclock/internal/apperr"

// AddAppUsage adds seconds to the (date, appName) accumulator, creating it
// on first use. Repeated heartbeats are additive.
func (db *DB) AddAppUsage(date, appName string, seconds int64) error {
	_, err := db.conn.Exec(
		`INSERT INTO app_usage (date, app_name, total_seconds) VALUES (?, ?, ?)
		 ON CONFLICT (date, app_name) DO UPDATE
		 SET total_seconds = total_seconds + excluded.total_seconds`,
		date, appName, seconds,
	)
	return apperr.Storage("add app usage", err)
}

// AppUsage returns the usage rows for date, largest first.
func (db *DB) AppUsage(date string) ([]AppUsage, error) {
	rows, err := db.conn.Query(
		`SELECT date, app_name, total_seconds FROM app_usage
		 WHERE date = ? ORDER BY total_seconds DESC, app_name`,
		date,
	)
	if err != nil {
		return nil, apperr.Storage("app usage", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []AppUsage
	for rows.Next() {
		var u AppUsage
		if err := rows.Scan(&u.Date, &u.AppName, &u.TotalSeconds); err != nil {
			return nil, apperr.Storage("app usage", err)
		}
		usage = append(usage, u)
	}
	return usage, apperr.Storage("app usage", rows.Err())
}

// AppNames returns the distinct application names seen on date, alphabetically.
func (db *DB) AppNames(date string) ([]string, error) {
	rows, err := db.conn.Query("SELECT app_name FROM app_usage WHERE date = ? ORDER BY app_name", date)
	if err != nil {
		return nil, apperr.Storage("app names", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.Storage("app names", err)
		}
		names = append(names, name)
	}
	return names, apperr.Storage("app names", rows.Err())
}
