package journal

import (
	"database/sql"
	"time"
)

const recordColumns = `
	SELECT id, timestamp, action, path, file_name, object_type, size,
	       reason, rule, error_message
	FROM sweep_events
`

// Recent returns the N most recent sweep events.
func (d *DB) Recent(limit int) ([]Record, error) {
	query := recordColumns + `
	ORDER BY timestamp DESC
	LIMIT ?
	`
	return d.queryRecords(query, limit)
}

// ByAction returns events filtered by action type.
func (d *DB) ByAction(action string) ([]Record, error) {
	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	`
	return d.queryRecords(query, action)
}

// ByPath returns events matching a path pattern (SQL LIKE syntax).
func (d *DB) ByPath(pathPattern string) ([]Record, error) {
	query := recordColumns + `
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`
	return d.queryRecords(query, pathPattern)
}

// Largest returns the N largest removed objects by size.
func (d *DB) Largest(limit int) ([]Record, error) {
	query := recordColumns + `
	WHERE action = 'REMOVE'
	ORDER BY size DESC
	LIMIT ?
	`
	return d.queryRecords(query, limit)
}

// BytesReclaimed returns total bytes removed in a time range.
func (d *DB) BytesReclaimed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM sweep_events
	WHERE action = 'REMOVE' AND timestamp BETWEEN ? AND ?
	`
	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// CountByAction returns event counts grouped by action.
func (d *DB) CountByAction() (map[string]int, error) {
	rows, err := d.db.Query(`
	SELECT action, COUNT(*)
	FROM sweep_events
	GROUP BY action
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, rows.Err()
}

// Stats holds aggregated statistics over a time range.
type Stats struct {
	TotalRemoved   int
	TotalSkipped   int
	TotalErrors    int
	BytesReclaimed int64
}

// StatsSince aggregates events from the given time until now.
func (d *DB) StatsSince(since time.Time) (*Stats, error) {
	rows, err := d.db.Query(`
	SELECT action, COUNT(*), COALESCE(SUM(size), 0)
	FROM sweep_events
	WHERE timestamp >= ?
	GROUP BY action
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var action string
		var count int
		var size int64
		if err := rows.Scan(&action, &count, &size); err != nil {
			return nil, err
		}
		switch action {
		case "REMOVE":
			stats.TotalRemoved = count
			stats.BytesReclaimed = size
		case "SKIP":
			stats.TotalSkipped = count
		case "ERROR":
			stats.TotalErrors = count
		}
	}
	return stats, rows.Err()
}

func (d *DB) queryRecords(query string, args ...interface{}) ([]Record, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var fileName, reason, rule, errMsg sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Path, &fileName,
			&r.ObjectType, &r.Size, &reason, &rule, &errMsg,
		); err != nil {
			return nil, err
		}
		r.FileName = fileName.String
		r.Reason = reason.String
		r.Rule = rule.String
		r.ErrorMessage = errMsg.String
		out = append(out, r)
	}
	return out, rows.Err()
}
