package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

const taskColumns = `id, user_id, assigned_to, title, description, completed, category_id,
		due_date, priority, file_path, bookmarked, recurring, recurring_interval,
		recurring_start_date, recurring_end_date, parent_task_id, created_at, updated_at`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (user_id, assigned_to, title, description, completed, category_id,
			due_date, priority, file_path, bookmarked, recurring, recurring_interval,
			recurring_start_date, recurring_end_date, parent_task_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.AssignedTo, task.Title, task.Description, task.Completed,
		task.CategoryID, task.DueDate, task.Priority, task.FilePath, task.Bookmarked,
		task.Recurring, task.RecurringInterval, task.RecurringStartDate,
		task.RecurringEndDate, task.ParentTaskID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET assigned_to = $2, title = $3, description = $4, completed = $5, category_id = $6,
			due_date = $7, priority = $8, file_path = $9, bookmarked = $10, recurring = $11,
			recurring_interval = $12, recurring_start_date = $13, recurring_end_date = $14,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.AssignedTo, task.Title, task.Description, task.Completed,
		task.CategoryID, task.DueDate, task.Priority, task.FilePath, task.Bookmarked,
		task.Recurring, task.RecurringInterval, task.RecurringStartDate, task.RecurringEndDate,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

// buildFilter translates a TaskFilter into WHERE clauses. The visibility rule
// (owner OR assignee) and every derived view live here so list and count stay
// consistent.
func buildFilter(filter ports.TaskFilter) (string, []interface{}) {
	clauses := []string{"1=1"}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.VisibleTo != nil {
		p := arg(*filter.VisibleTo)
		clauses = append(clauses, fmt.Sprintf("(user_id = %s OR assigned_to = %s)", p, p))
	}

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch filter.View {
	case ports.ViewCompleted:
		clauses = append(clauses, "completed = TRUE")
	case ports.ViewScheduled:
		clauses = append(clauses, fmt.Sprintf("due_date IS NOT NULL AND due_date >= %s AND completed = FALSE", arg(now)))
	case ports.ViewOverdue:
		clauses = append(clauses, fmt.Sprintf("due_date IS NOT NULL AND due_date < %s AND completed = FALSE", arg(now)))
	case ports.ViewRecurring:
		clauses = append(clauses, "recurring = TRUE")
	case ports.ViewBookmarked:
		clauses = append(clauses, "bookmarked = TRUE")
	}

	if filter.Completed != nil {
		clauses = append(clauses, fmt.Sprintf("completed = %s", arg(*filter.Completed)))
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("category_id = %s", arg(*filter.CategoryID)))
	}
	if filter.Priority != nil {
		clauses = append(clauses, fmt.Sprintf("priority = %s", arg(*filter.Priority)))
	}
	if filter.Search != nil {
		clauses = append(clauses, fmt.Sprintf("title ILIKE '%%' || %s || '%%'", arg(*filter.Search)))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	where, args := buildFilter(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		taskColumns, where, limit, filter.Offset)

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	where, args := buildFilter(filter)

	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}

// DeleteCompleted removes the user's completed tasks and returns the deleted
// rows, so callers can emit per-task audit entries after the fact.
func (r *TaskRepositoryImpl) DeleteCompleted(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	query := `DELETE FROM tasks WHERE user_id = $1 AND completed = TRUE RETURNING ` + taskColumns

	var deleted []*entities.Task
	err := r.db.SelectContext(ctx, &deleted, query, userID)
	if err != nil {
		return nil, fmt.Errorf("delete completed tasks: %w", err)
	}

	return deleted, nil
}

func (r *TaskRepositoryImpl) GetRecurringTemplates(ctx context.Context, today time.Time) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE recurring = TRUE AND recurring_end_date IS NOT NULL AND recurring_end_date >= $1
		ORDER BY id`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, today)
	if err != nil {
		return nil, fmt.Errorf("get recurring templates: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) CloneExists(ctx context.Context, parentTaskID int, dueDate time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE parent_task_id = $1 AND due_date = $2)`,
		parentTaskID, dueDate)
	if err != nil {
		return false, fmt.Errorf("check clone exists: %w", err)
	}

	return exists, nil
}

// CountCreatedBetween groups creation counts into day-wide bins anchored at
// `from`, not at the database session's midnight, so the caller's notion of a
// calendar day survives timezone differences between server and database.
func (r *TaskRepositoryImpl) CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ports.CreatedCount, error) {
	query := `
		SELECT date_bin('1 day', created_at, $2) AS day,
			COALESCE(priority, '') AS priority,
			COUNT(*) AS count
		FROM tasks
		WHERE (user_id = $1 OR assigned_to = $1)
			AND created_at >= $2 AND created_at < $3
		GROUP BY day, priority
		ORDER BY day`

	var counts []ports.CreatedCount
	err := r.db.SelectContext(ctx, &counts, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count created tasks: %w", err)
	}

	return counts, nil
}
