package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const todoColumns = `id, user_id, university_id, title, description, completed, completed_at, created_at`

// CreateTodo inserts a task for the owner. Titles are not deduplicated.
func (s *Session) CreateTodo(ctx context.Context, owner int64, t NewTodo) (*Todo, error) {
	ts := now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO todos (user_id, university_id, title, description, completed, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		owner, nullID(t.UniversityID), t.Title, t.Description, ts)
	if err != nil {
		return nil, fmt.Errorf("insert todo %q: %w", t.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Todo{
		ID:           id,
		UserID:       owner,
		UniversityID: t.UniversityID,
		Title:        t.Title,
		Description:  t.Description,
		CreatedAt:    parseTime(ts),
	}, nil
}

// ListTodos returns the owner's tasks in creation order, or newest first.
func (s *Session) ListTodos(ctx context.Context, owner int64, newestFirst bool) ([]Todo, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY id `+order, owner)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// GetTodo returns one of the owner's tasks or ErrNotFound.
func (s *Session) GetTodo(ctx context.Context, owner, id int64) (*Todo, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, owner)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// SetTodoCompleted flips the completion flag. completed_at is stamped when
// completing and cleared when reopening.
func (s *Session) SetTodoCompleted(ctx context.Context, owner, id int64, completed bool) (*Todo, error) {
	var completedAt sql.NullString
	if completed {
		completedAt = sql.NullString{String: now(), Valid: true}
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE todos SET completed = ?, completed_at = ? WHERE id = ? AND user_id = ?`,
		boolInt(completed), completedAt, id, owner)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTodo(ctx, owner, id)
}

// CompleteFirstOpenTodo completes the oldest open task whose title contains
// substr (case-insensitive). Returns false when nothing matched.
func (s *Session) CompleteFirstOpenTodo(ctx context.Context, owner int64, substr string) (bool, error) {
	var id int64
	err := s.q.QueryRowContext(ctx,
		`SELECT id FROM todos
		 WHERE user_id = ? AND completed = 0 AND title LIKE '%' || ? || '%'
		 ORDER BY id LIMIT 1`, owner, substr).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find open todo %q: %w", substr, err)
	}
	if _, err := s.SetTodoCompleted(ctx, owner, id, true); err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(r rowScanner) (*Todo, error) {
	var t Todo
	var uni sql.NullInt64
	var completedAt sql.NullString
	var createdAt string
	if err := r.Scan(&t.ID, &t.UserID, &uni, &t.Title, &t.Description,
		&t.Completed, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	t.UniversityID = idPtr(uni)
	if completedAt.Valid {
		ts := parseTime(completedAt.String)
		t.CompletedAt = &ts
	}
	t.CreatedAt = parseTime(createdAt)
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
