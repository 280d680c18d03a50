// Package syncx appends campaign lifecycle events to an append-only
// log. Consumers (audit, offline sync) read the log by offset; the
// engine only ever writes.
package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Event types recorded by the progression engine.
const (
	TypeExamCreated   = "exam_created"
	TypeDayStarted    = "day_started"
	TypeDayCompleted  = "day_completed"
	TypeDayMissed     = "day_missed"
	TypeExamCompleted = "exam_completed"
	TypeExamAbandoned = "exam_abandoned"
	TypeExamPaused    = "exam_paused"
	TypeExamResumed   = "exam_resumed"
	TypeExamDeleted   = "exam_deleted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: exam id
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// ListForKey returns events for one exam in append order.
func (r *EventRepo) ListForKey(ctx context.Context, key string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM event_log WHERE key=$1 ORDER BY "offset"`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
