package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const universityColumns = `id, name, country, degree_type, field_of_study, tuition_fee, acceptance_rate, ranking, description`

// Unranked universities (ranking 0) sort after every ranked one.
const rankedOrder = `ORDER BY CASE WHEN ranking > 0 THEN ranking ELSE 2147483647 END, id`

// UniversitiesByCountries returns up to limit universities located in any of
// countries, best ranking first. An empty country list matches every row.
func (s *Session) UniversitiesByCountries(ctx context.Context, countries []string, limit int) ([]University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities`
	args := make([]any, 0, len(countries)+1)
	if len(countries) > 0 {
		query += ` WHERE country IN (` + placeholders(len(countries)) + `)`
		for _, c := range countries {
			args = append(args, c)
		}
	}
	query += ` ` + rankedOrder + ` LIMIT ?`
	args = append(args, limit)
	return s.queryUniversities(ctx, query, args...)
}

// UniversitiesExcluding returns up to limit ranked universities whose ids are
// not in exclude.
func (s *Session) UniversitiesExcluding(ctx context.Context, exclude []int64, limit int) ([]University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities`
	args := int64Args(exclude)
	if len(exclude) > 0 {
		query += ` WHERE id NOT IN (` + placeholders(len(exclude)) + `)`
	}
	query += ` ` + rankedOrder + ` LIMIT ?`
	args = append(args, limit)
	return s.queryUniversities(ctx, query, args...)
}

// UniversitiesByIDs returns the universities with the given ids in no
// particular order. Unknown ids are skipped.
func (s *Session) UniversitiesByIDs(ctx context.Context, ids []int64) ([]University, error) {
	if len(ids) == 0 {
		return []University{}, nil
	}
	return s.queryUniversities(ctx,
		`SELECT `+universityColumns+` FROM universities WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
}

// ListUniversities returns the catalog, optionally filtered to one country.
func (s *Session) ListUniversities(ctx context.Context, country string) ([]University, error) {
	if country == "" {
		return s.queryUniversities(ctx, `SELECT `+universityColumns+` FROM universities `+rankedOrder)
	}
	return s.queryUniversities(ctx,
		`SELECT `+universityColumns+` FROM universities WHERE country = ? `+rankedOrder, country)
}

// GetUniversity returns one university or ErrNotFound.
func (s *Session) GetUniversity(ctx context.Context, id int64) (*University, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+universityColumns+` FROM universities WHERE id = ?`, id)
	u, err := scanUniversity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get university %d: %w", id, err)
	}
	return u, nil
}

// InsertUniversity adds a catalog row and returns its id.
func (s *Session) InsertUniversity(ctx context.Context, u *University) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO universities (name, country, degree_type, field_of_study, tuition_fee, acceptance_rate, ranking, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Country, u.DegreeType, u.FieldOfStudy, u.TuitionFee, u.AcceptanceRate, u.Ranking, u.Description)
	if err != nil {
		return 0, fmt.Errorf("insert university %q: %w", u.Name, err)
	}
	return res.LastInsertId()
}

// CountUniversities returns the catalog size.
func (s *Session) CountUniversities(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM universities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return n, nil
}

func (s *Session) queryUniversities(ctx context.Context, query string, args ...any) ([]University, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query universities: %w", err)
	}
	defer rows.Close()

	out := []University{}
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func scanUniversity(r rowScanner) (*University, error) {
	var u University
	if err := r.Scan(&u.ID, &u.Name, &u.Country, &u.DegreeType, &u.FieldOfStudy,
		&u.TuitionFee, &u.AcceptanceRate, &u.Ranking, &u.Description); err != nil {
		return nil, err
	}
	return &u, nil
}
