package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecognitionCall records metadata for a single image recognition request.
type RecognitionCall struct {
	Provider    string
	Model       string
	Outcome     string
	Predictions int
	TopLabel    string
	LatencyMS   int64
	Timestamp   time.Time
}

// Store handles persistence of recognition calls to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing, migrated database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a call to the database.
func (s *Store) Record(ctx context.Context, c RecognitionCall) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recognition_calls (provider, model, outcome, predictions, top_label, latency_ms, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Provider, c.Model, c.Outcome, c.Predictions, c.TopLabel, c.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to record recognition call: %w", err)
	}
	return nil
}

// DailyUsage represents recognition totals for a single day.
type DailyUsage struct {
	Date         string `json:"date"`
	Calls        int    `json:"calls"`
	Failures     int    `json:"failures"`
	AvgLatencyMS int64  `json:"avgLatencyMs"`
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m-%d', timestamp) AS day,
       COUNT(*),
       SUM(CASE WHEN outcome = 'success' THEN 0 ELSE 1 END),
       CAST(AVG(latency_ms) AS INTEGER)
FROM recognition_calls
WHERE timestamp >= ?
GROUP BY day
ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u   DailyUsage
			day sql.NullString
		)
		if err := rows.Scan(&day, &u.Calls, &u.Failures, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM recognition_calls WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up recognition calls: %w", err)
	}
	return res.RowsAffected()
}
