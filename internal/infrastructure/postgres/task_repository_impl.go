package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
)

const taskColumns = `id, title, description, status, priority, due_date, assignee, labels, created_by, created_at, updated_at`

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	if t.Labels == nil {
		t.Labels = []string{}
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date, assignee, labels, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.Assignee, t.Labels, t.CreatedBy)

	return mapError(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, f repository.TaskFilter) ([]*entity.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE created_by = $1`)
	args := []any{ownerID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		sb.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		sb.WriteString(` AND priority = $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapError(err)
	}
	return collectTasks(rows)
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	if t.Labels == nil {
		t.Labels = []string{}
	}
	row := r.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
		    assignee = $6, labels = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.Assignee, t.Labels, t.ID)

	return mapError(row.Scan(&t.UpdatedAt))
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) CountByOwner(ctx context.Context, ownerID string) (*entity.TaskStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, priority, COUNT(*)
		FROM tasks
		WHERE created_by = $1
		GROUP BY status, priority
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	stats := entity.NewTaskStats()
	for rows.Next() {
		var status, priority string
		var n int64
		if err := rows.Scan(&status, &priority, &n); err != nil {
			return nil, err
		}
		stats.Add(entity.TaskStatus(status), entity.TaskPriority(priority), int(n))
	}
	return stats, rows.Err()
}

// SearchByOwner matches q against title, description and labels with ILIKE.
func (r *TaskRepository) SearchByOwner(ctx context.Context, ownerID, q string, limit int) ([]*entity.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE created_by = $1
		  AND (title ILIKE $2 OR description ILIKE $2 OR $3 = ANY(labels))
		ORDER BY created_at DESC
		LIMIT $4
	`, ownerID, "%"+escapeLike(q)+"%", q, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return collectTasks(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func collectTasks(rows pgx.Rows) ([]*entity.Task, error) {
	defer rows.Close()
	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	var status, priority string
	var due pgtype.Timestamptz
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &due,
		&t.Assignee, &t.Labels, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	t.Status = entity.TaskStatus(status)
	t.Priority = entity.TaskPriority(priority)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	return t, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
