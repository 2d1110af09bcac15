package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const documentColumns = `id, user_id, university_id, name, is_completed, created_at, updated_at`

// ListDocuments returns the owner's checklist for one university.
func (s *Session) ListDocuments(ctx context.Context, owner, university int64) ([]Document, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM application_documents
		 WHERE user_id = ? AND university_id = ? ORDER BY id`, owner, university)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// CreateDocuments inserts one open checklist item per name.
func (s *Session) CreateDocuments(ctx context.Context, owner, university int64, names []string) ([]Document, error) {
	docs := make([]Document, 0, len(names))
	for _, name := range names {
		ts := now()
		res, err := s.q.ExecContext(ctx,
			`INSERT INTO application_documents (user_id, university_id, name, is_completed, created_at, updated_at)
			 VALUES (?, ?, ?, 0, ?, ?)`, owner, university, name, ts, ts)
		if err != nil {
			return nil, fmt.Errorf("insert document %q: %w", name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{
			ID:           id,
			UserID:       owner,
			UniversityID: university,
			Name:         name,
			CreatedAt:    parseTime(ts),
			UpdatedAt:    parseTime(ts),
		})
	}
	return docs, nil
}

// SetDocumentCompleted updates one of the owner's checklist items.
func (s *Session) SetDocumentCompleted(ctx context.Context, owner, id int64, completed bool) (*Document, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE application_documents SET is_completed = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		boolInt(completed), now(), id, owner)
	if err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	row := s.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM application_documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func scanDocument(r rowScanner) (*Document, error) {
	var d Document
	var createdAt, updatedAt string
	if err := r.Scan(&d.ID, &d.UserID, &d.UniversityID, &d.Name, &d.Completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}
