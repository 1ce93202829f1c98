package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"targetwatch/internal/pubsub"
)

// History remembers when each target last produced a report.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Record stores ref as the latest report of its target.
func (h *History) Record(ctx context.Context, ref pubsub.TargetRef) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO report_history(target_id, instance, generated_at) VALUES(?, ?, ?)
		 ON CONFLICT(target_id) DO UPDATE SET instance = excluded.instance, generated_at = excluded.generated_at`,
		ref.TargetID, ref.Instance, ref.At.Unix())
	if err != nil {
		return fmt.Errorf("record report for %s: %w", ref.TargetID, err)
	}
	return nil
}

// Last returns when targetID last produced a report.
func (h *History) Last(ctx context.Context, targetID string) (time.Time, bool, error) {
	var ts int64
	err := h.db.QueryRowContext(ctx,
		`SELECT generated_at FROM report_history WHERE target_id = ?`, targetID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load report history for %s: %w", targetID, err)
	}
	return time.Unix(ts, 0), true, nil
}
