package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- BOQ ---

const boqColumns = `id, project_id, name, category, quantity, area, notes, status, stages, units, version, created_at, updated_at`

func scanBOQItem(scanner interface{ Scan(dest ...any) error }) (boq.Item, error) {
	var (
		item       boq.Item
		stagesJSON []byte
		unitsJSON  []byte
	)
	err := scanner.Scan(
		&item.ID, &item.ProjectID, &item.Name, &item.Category, &item.Quantity,
		&item.Area, &item.Notes, &item.Status, &stagesJSON, &unitsJSON,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(stagesJSON, &item.Stages); err != nil {
		return item, fmt.Errorf("unmarshal stages: %w", err)
	}
	if err := json.Unmarshal(unitsJSON, &item.Units); err != nil {
		return item, fmt.Errorf("unmarshal units: %w", err)
	}
	return item, nil
}

func (s *Store) ListBOQItems(ctx context.Context, projectID string) ([]boq.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+boqColumns+` FROM boq_items WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list boq items: %w", err)
	}
	defer rows.Close()

	var items []boq.Item
	for rows.Next() {
		item, err := scanBOQItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan boq item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetBOQItem(ctx context.Context, id string) (*boq.Item, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+boqColumns+` FROM boq_items WHERE id = $1`, id)

	item, err := scanBOQItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get boq item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get boq item %s: %w", id, err)
	}
	return &item, nil
}

func (s *Store) CreateBOQItem(ctx context.Context, item *boq.Item) error {
	stagesJSON, unitsJSON, err := marshalBOQFields(item)
	if err != nil {
		return err
	}

	item.Version = 1
	_, err = s.pool.Exec(ctx,
		`INSERT INTO boq_items (id, project_id, name, category, quantity, area, notes, status, stages, units, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.ProjectID, item.Name, item.Category, item.Quantity,
		item.Area, item.Notes, item.Status, stagesJSON, unitsJSON,
		item.Version, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create boq item %s: %w", item.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create boq item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) UpdateBOQItem(ctx context.Context, item *boq.Item) error {
	stagesJSON, unitsJSON, err := marshalBOQFields(item)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE boq_items
		 SET name = $2, category = $3, quantity = $4, area = $5, notes = $6, status = $7,
		     stages = $8, units = $9, version = version + 1, updated_at = $10
		 WHERE id = $1 AND version = $11`,
		item.ID, item.Name, item.Category, item.Quantity, item.Area, item.Notes,
		item.Status, stagesJSON, unitsJSON, item.UpdatedAt, item.Version)
	if err != nil {
		return fmt.Errorf("update boq item %s: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update boq item %s: %w", item.ID, domain.ErrConflict)
	}
	item.Version++
	return nil
}

func marshalBOQFields(item *boq.Item) (stages, units []byte, err error) {
	stages, err = json.Marshal(item.Stages)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal stages: %w", err)
	}
	if item.Units == nil {
		units = []byte("[]")
	} else if units, err = json.Marshal(item.Units); err != nil {
		return nil, nil, fmt.Errorf("marshal units: %w", err)
	}
	return stages, units, nil
}

// --- Rooms ---

func (s *Store) ListRooms(ctx context.Context, projectID string) ([]boq.Room, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM rooms WHERE project_id = $1 ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []boq.Room
	for rows.Next() {
		var r boq.Room
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *Store) CreateRoom(ctx context.Context, projectID string, room *boq.Room) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (id, project_id, name) VALUES ($1, $2, $3)`,
		room.ID, projectID, room.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create room %s: %w", room.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create room %s: %w", room.ID, err)
	}
	return nil
}

// --- Tasks ---

const taskColumns = `id, project_id, task_template_id, boq_item_id, room_id, title, description,
	stakeholder, status, priority, due_date, blocker_reason, created_from,
	role_category, dependency_type, dependency_note, is_general_task, is_hygiene_task,
	flagged, flag_reason, block, images, version, created_at, updated_at`

func scanTask(scanner interface{ Scan(dest ...any) error }) (task.Task, error) {
	var (
		t          task.Task
		blockJSON  []byte
		imagesJSON []byte
	)
	err := scanner.Scan(
		&t.ID, &t.ProjectID, &t.TaskTemplateID, &t.BOQItemID, &t.RoomID, &t.Title, &t.Description,
		&t.Stakeholder, &t.Status, &t.Priority, &t.DueDate, &t.BlockerReason, &t.CreatedFrom,
		&t.RoleCategory, &t.DependencyType, &t.DependencyNote, &t.IsGeneralTask, &t.IsHygieneTask,
		&t.Flagged, &t.FlagReason, &blockJSON, &imagesJSON, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(blockJSON, &t.Block); err != nil {
		return t, fmt.Errorf("unmarshal block: %w", err)
	}
	if err := json.Unmarshal(imagesJSON, &t.Images); err != nil {
		return t, fmt.Errorf("unmarshal images: %w", err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) InsertTask(ctx context.Context, t *task.Task) error {
	blockJSON, imagesJSON, err := marshalTaskFields(t)
	if err != nil {
		return err
	}

	t.Version = 1
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tasks (id, project_id, task_template_id, boq_item_id, room_id, title, description,
		                    stakeholder, status, priority, due_date, blocker_reason, created_from,
		                    role_category, dependency_type, dependency_note, is_general_task, is_hygiene_task,
		                    flagged, flag_reason, block, images, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		t.ID, t.ProjectID, t.TaskTemplateID, t.BOQItemID, t.RoomID, t.Title, t.Description,
		t.Stakeholder, t.Status, t.Priority, t.DueDate, t.BlockerReason, t.CreatedFrom,
		t.RoleCategory, t.DependencyType, t.DependencyNote, t.IsGeneralTask, t.IsHygieneTask,
		t.Flagged, t.FlagReason, blockJSON, imagesJSON, t.Version, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert task %s: %w", t.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	blockJSON, imagesJSON, err := marshalTaskFields(t)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks
		 SET room_id = $2, title = $3, description = $4, status = $5, priority = $6, due_date = $7,
		     blocker_reason = $8, role_category = $9, dependency_type = $10, dependency_note = $11,
		     is_general_task = $12, is_hygiene_task = $13, flagged = $14, flag_reason = $15,
		     block = $16, images = $17, version = version + 1, updated_at = $18
		 WHERE id = $1 AND version = $19`,
		t.ID, t.RoomID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.BlockerReason, t.RoleCategory, t.DependencyType, t.DependencyNote,
		t.IsGeneralTask, t.IsHygieneTask, t.Flagged, t.FlagReason,
		blockJSON, imagesJSON, t.UpdatedAt, t.Version)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrConflict)
	}
	t.Version++
	return nil
}

func marshalTaskFields(t *task.Task) (block, images []byte, err error) {
	block, err = json.Marshal(t.Block)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal block: %w", err)
	}
	if t.Images == nil {
		images = []byte("[]")
	} else if images, err = json.Marshal(t.Images); err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	return block, images, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
