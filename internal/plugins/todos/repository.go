package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskbox-app/taskbox/internal/apperror"
)

// TodoRepository defines the data access contract for todo operations.
// Every query that touches an existing row filters by id AND user_id, so
// ownership is enforced at the SQL level and a wrong-owner lookup is
// indistinguishable from a missing row.
type TodoRepository interface {
	// List returns the user's todos with the completion filter applied,
	// ordered by the database-level base order for the given sort key.
	// Priority rank ordering is NOT applied here — see the service.
	List(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error)

	FindByID(ctx context.Context, id, userID string) (*Todo, error)
	Create(ctx context.Context, todo *Todo) error
	Update(ctx context.Context, todo *Todo) error

	// Toggle flips the completed flag in place. Each call inverts the
	// current state; it is not an idempotent set.
	Toggle(ctx context.Context, id, userID string) error

	Delete(ctx context.Context, id, userID string) error

	// Counting queries backing the stats aggregate. Read-only and
	// independent, safe to issue concurrently.
	CountAll(ctx context.Context, userID string) (int, error)
	CountCompleted(ctx context.Context, userID string) (int, error)
	CountHighPriorityActive(ctx context.Context, userID string) (int, error)
}

// todoRepository implements TodoRepository with hand-written MariaDB queries.
type todoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new MariaDB-backed todo repository.
func NewTodoRepository(db *sql.DB) TodoRepository {
	return &todoRepository{db: db}
}

// todoColumns is the SELECT column list for todo queries.
const todoColumns = `id, user_id, title, description, completed, priority,
	due_date, created_at, updated_at`

// List fetches the user's todos in a stable base order. For createdAt the
// base order is the final order (newest first). For dueDate, nulls sort
// first ascending with created_at descending as the tiebreak. For priority,
// the base order is created_at descending; the service layers the rank
// re-sort on top because ENUM rank is not a natural store sort key.
func (r *todoRepository) List(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}

	switch filter {
	case FilterActive:
		query += ` AND completed = FALSE`
	case FilterCompleted:
		query += ` AND completed = TRUE`
	}

	switch sortBy {
	case SortByDueDate:
		query += ` ORDER BY due_date ASC, created_at DESC`
	default: // SortByCreatedAt and the priority base order.
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
			&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning todo row: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// FindByID retrieves a todo only if it belongs to the given user.
func (r *todoRepository) FindByID(ctx context.Context, id, userID string) (*Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ?`

	t := &Todo{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Todo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying todo: %w", err)
	}
	return t, nil
}

// Create inserts a new todo row.
func (r *todoRepository) Create(ctx context.Context, todo *Todo) error {
	query := `INSERT INTO todos (id, user_id, title, description, completed, priority, due_date)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description,
		todo.Completed, todo.Priority, todo.DueDate,
	)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	return nil
}

// Update saves changes to an existing todo, keyed by id and owner.
func (r *todoRepository) Update(ctx context.Context, todo *Todo) error {
	query := `UPDATE todos
		SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.Priority, todo.DueDate,
		todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("Todo not found")
	}
	return nil
}

// Toggle flips the completed flag atomically at the database. NOT completed
// always changes the row, so RowsAffected reliably distinguishes a missing
// or foreign row from a successful flip.
func (r *todoRepository) Toggle(ctx context.Context, id, userID string) error {
	query := `UPDATE todos SET completed = NOT completed WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("toggling todo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("Todo not found")
	}
	return nil
}

// Delete hard-deletes a todo, keyed by id and owner.
func (r *todoRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("Todo not found")
	}
	return nil
}

// CountAll returns the number of todos owned by the user.
func (r *todoRepository) CountAll(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM todos WHERE user_id = ?`, userID)
}

// CountCompleted returns the number of completed todos owned by the user.
func (r *todoRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM todos WHERE user_id = ? AND completed = TRUE`, userID)
}

// CountHighPriorityActive returns the number of pending high-priority todos.
// Completed high-priority tasks do not count.
func (r *todoRepository) CountHighPriorityActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM todos WHERE user_id = ? AND priority = 'high' AND completed = FALSE`, userID)
}

// count runs a single-value COUNT query.
func (r *todoRepository) count(ctx context.Context, query, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting todos: %w", err)
	}
	return n, nil
}
