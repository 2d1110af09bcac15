package store

import (
	"context"
	"fmt"

	"counsellor/internal/logging"
)

// Selection tables share one shape: (user_id, university_id) unique, ordered
// by insertion.
const (
	tableShortlist = "shortlisted_universities"
	tableLocked    = "locked_universities"
)

// AddShortlist records a Selection. Returns false when the pair already existed.
func (s *Session) AddShortlist(ctx context.Context, owner, university int64) (bool, error) {
	return s.addPair(ctx, tableShortlist, owner, university)
}

// RemoveShortlist deletes a Selection. Returns false when none existed.
func (s *Session) RemoveShortlist(ctx context.Context, owner, university int64) (bool, error) {
	return s.removePair(ctx, tableShortlist, owner, university)
}

// IsShortlisted reports whether the owner has shortlisted the university.
func (s *Session) IsShortlisted(ctx context.Context, owner, university int64) (bool, error) {
	return s.hasPair(ctx, tableShortlist, owner, university)
}

// ShortlistedIDs returns the owner's shortlisted university ids in creation order.
func (s *Session) ShortlistedIDs(ctx context.Context, owner int64) ([]int64, error) {
	return s.pairIDs(ctx, tableShortlist, owner)
}

// AddLock records a Commitment. Returns false when the pair already existed.
// It does not create the matching Selection; callers that lock go through
// a transaction that adds both.
func (s *Session) AddLock(ctx context.Context, owner, university int64) (bool, error) {
	return s.addPair(ctx, tableLocked, owner, university)
}

// RemoveLock deletes a Commitment. Returns false when none existed.
func (s *Session) RemoveLock(ctx context.Context, owner, university int64) (bool, error) {
	return s.removePair(ctx, tableLocked, owner, university)
}

// IsLocked reports whether the owner has locked the university.
func (s *Session) IsLocked(ctx context.Context, owner, university int64) (bool, error) {
	return s.hasPair(ctx, tableLocked, owner, university)
}

// LockedIDs returns the owner's locked university ids in creation order.
func (s *Session) LockedIDs(ctx context.Context, owner int64) ([]int64, error) {
	return s.pairIDs(ctx, tableLocked, owner)
}

func (s *Session) addPair(ctx context.Context, table string, owner, university int64) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (user_id, university_id, created_at) VALUES (?, ?, ?)`,
		owner, university, now())
	if err != nil {
		return false, fmt.Errorf("insert %s (%d, %d): %w", table, owner, university, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	logging.StoreDebug("%s add user=%d university=%d created=%v", table, owner, university, n > 0)
	return n > 0, nil
}

func (s *Session) removePair(ctx context.Context, table string, owner, university int64) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND university_id = ?`, owner, university)
	if err != nil {
		return false, fmt.Errorf("delete %s (%d, %d): %w", table, owner, university, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Session) hasPair(ctx context.Context, table string, owner, university int64) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE user_id = ? AND university_id = ?`,
		owner, university).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", table, err)
	}
	return count > 0, nil
}

func (s *Session) pairIDs(ctx context.Context, table string, owner int64) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT university_id FROM `+table+` WHERE user_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
