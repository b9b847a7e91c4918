package store

import "github.com/blackwell-systems/workclock/internal/apperr"

// DailyReport returns per-day totals for the most recent limit days.
func (db *DB) DailyReport(limit int) ([]PeriodTotal, error) {
	return db.periodReport("date", limit)
}

// WeeklyReport returns per-week totals (YYYY-WW, Monday-based) for the most
// recent limit weeks.
func (db *DB) WeeklyReport(limit int) ([]PeriodTotal, error) {
	return db.periodReport("strftime('%Y-%W', date)", limit)
}

// MonthlyReport returns per-month totals (YYYY-MM) for the most recent limit months.
func (db *DB) MonthlyReport(limit int) ([]PeriodTotal, error) {
	return db.periodReport("strftime('%Y-%m', date)", limit)
}

// periodReport groups sessions by the SQL expression period. period is one
// of the fixed expressions above, never user input.
func (db *DB) periodReport(period string, limit int) ([]PeriodTotal, error) {
	rows, err := db.conn.Query(
		`SELECT `+period+` AS period,
		        SUM(CASE WHEN kind = 'manual' THEN total_seconds ELSE 0 END),
		        SUM(CASE WHEN kind = 'automatic' THEN total_seconds ELSE 0 END)
		 FROM sessions
		 GROUP BY period
		 ORDER BY period DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, apperr.Storage("period report", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []PeriodTotal
	for rows.Next() {
		var pt PeriodTotal
		if err := rows.Scan(&pt.Period, &pt.ManualTotal, &pt.AutoTotal); err != nil {
			return nil, apperr.Storage("period report", err)
		}
		totals = append(totals, pt)
	}
	return totals, apperr.Storage("period report", rows.Err())
}

// DateTotal returns the persisted seconds of all sessions of kind dated date.
func (db *DB) DateTotal(kind Kind, date string) (int64, error) {
	var total int64
	err := db.conn.QueryRow(
		"SELECT COALESCE(SUM(total_seconds), 0) FROM sessions WHERE kind = ? AND date = ?",
		string(kind), date,
	).Scan(&total)
	return total, apperr.Storage("date total", err)
}
