package store

import (
	"database/sql"

	"github.com/blackwell-systems/workclock/internal/apperr"
)

// GetSetting returns the stored value for key, or def when the key is absent.
func (db *DB) GetSetting(key, def string) (string, error) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, apperr.Storage("get setting", err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return apperr.Storage("set setting", err)
}

// SetSettings stores several values atomically.
func (db *DB) SetSettings(values map[string]string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Storage("set settings", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return apperr.Storage("set settings", err)
		}
	}
	return apperr.Storage("set settings", tx.Commit())
}

// AllSettings returns every stored key/value pair.
func (db *DB) AllSettings() (map[string]string, error) {
	rows, err := db.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, apperr.Storage("all settings", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, apperr.Storage("all settings", err)
		}
		settings[key] = value
	}
	return settings, apperr.Storage("all settings", rows.Err())
}
