package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/port/eventstore"
)

// EventStore implements eventstore.Store on top of the activity_events table.
// IDs and sequence numbers are assigned by the database on insert.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Append inserts events in order within a single transaction.
func (s *EventStore) Append(ctx context.Context, events ...activity.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ev := range events {
		metaJSON, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO activity_events (task_id, project_id, event_type, user_id, user_name, ts, details, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ev.TaskID, ev.ProjectID, ev.Type, ev.UserID, ev.UserName, ev.Timestamp, ev.Details, metaJSON)
		if err != nil {
			return fmt.Errorf("append event %s: %w", ev.Type, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// LoadByTask returns the task's events in append order.
func (s *EventStore) LoadByTask(ctx context.Context, taskID string) ([]activity.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, project_id, event_type, user_id, user_name, ts, details, metadata
		 FROM activity_events WHERE task_id = $1 ORDER BY seq`, taskID)
	if err != nil {
		return nil, fmt.Errorf("load events for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var events []activity.Event
	for rows.Next() {
		var (
			ev       activity.Event
			metaJSON []byte
		)
		err := rows.Scan(&ev.ID, &ev.TaskID, &ev.ProjectID, &ev.Type,
			&ev.UserID, &ev.UserName, &ev.Timestamp, &ev.Details, &metaJSON)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LoadByProject returns a page of the project's events, newest first. The
// cursor is the sequence number the next page continues below.
func (s *EventStore) LoadByProject(ctx context.Context, projectID string, cursor string, limit int) (*eventstore.FeedPage, error) {
	if limit <= 0 {
		limit = 50
	}

	before := int64(0)
	if cursor != "" {
		n, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid cursor %q", domain.ErrValidation, cursor)
		}
		before = n
	}

	query := `SELECT id, task_id, project_id, event_type, user_id, user_name, ts, details, metadata, seq
	          FROM activity_events WHERE project_id = $1`
	args := []any{projectID, limit + 1}
	if before > 0 {
		query += ` AND seq < $3`
		args = append(args, before)
	}
	query += ` ORDER BY seq DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load events for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var (
		events []activity.Event
		seqs   []int64
	)
	for rows.Next() {
		var (
			ev       activity.Event
			metaJSON []byte
			seq      int64
		)
		err := rows.Scan(&ev.ID, &ev.TaskID, &ev.ProjectID, &ev.Type,
			&ev.UserID, &ev.UserName, &ev.Timestamp, &ev.Details, &metaJSON, &seq)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		events = append(events, ev)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &eventstore.FeedPage{}
	if len(events) > limit {
		events = events[:limit]
		page.HasMore = true
		page.Cursor = strconv.FormatInt(seqs[limit-1], 10)
	}
	page.Events = events
	return page, nil
}
