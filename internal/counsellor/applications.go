package counsellor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"counsellor/internal/store"
)

var (
	// ErrNotShortlisted is returned when a manual lock targets a university
	// that is not on the shortlist.
	ErrNotShortlisted = errors.New("university must be shortlisted before locking")
	// ErrAlreadyLocked is returned by ManualLock for an existing lock.
	ErrAlreadyLocked = errors.New("university already locked")
	// ErrNotLocked is returned when an operation needs a lock that does not exist.
	ErrNotLocked = errors.New("university not locked")
	// ErrShortlistLocked is returned when removing a shortlisted university that is locked.
	ErrShortlistLocked = errors.New("university is locked; unlock it first")
)

// applicationTasks is the batch created once per committed university.
var applicationTasks = []store.NewTodo{
	{Title: "Prepare Statement of Purpose (SOP)", Description: "Write a compelling SOP tailored to this university"},
	{Title: "Complete application form", Description: "Fill out the university's online application form"},
	{Title: "Submit transcripts", Description: "Request and submit official transcripts"},
	{Title: "Get recommendation letters", Description: "Request recommendation letters from professors/employers"},
	{Title: "Submit test scores", Description: "Send official IELTS/TOEFL and GRE/GMAT scores"},
}

// ApplicationTaskCount is the size of the batch created by a new lock.
var ApplicationTaskCount = len(applicationTasks)

// CommitToUniversity locks a university for owner. In one transaction it
// inserts the lock and, only when the lock is new, backfills the shortlist
// entry and creates the application task batch. It reports whether a new
// lock was created.
func CommitToUniversity(ctx context.Context, sess *store.Session, owner, university int64) (bool, error) {
	var created bool
	err := sess.InTx(ctx, func(tx *store.Session) error {
		var err error
		created, err = tx.AddLock(ctx, owner, university)
		if err != nil || !created {
			return err
		}
		if _, err := tx.AddShortlist(ctx, owner, university); err != nil {
			return err
		}
		for _, t := range applicationTasks {
			t.UniversityID = &university
			if _, err := tx.CreateTodo(ctx, owner, t); err != nil {
				return fmt.Errorf("create application task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ManualLock is the user-initiated lock. Unlike the executor path it
// requires a prior shortlist entry and reports duplicates.
func ManualLock(ctx context.Context, sess *store.Session, owner, university int64) error {
	return sess.InTx(ctx, func(tx *store.Session) error {
		shortlisted, err := tx.IsShortlisted(ctx, owner, university)
		if err != nil {
			return err
		}
		if !shortlisted {
			return ErrNotShortlisted
		}
		created, err := CommitToUniversity(ctx, tx, owner, university)
		if err != nil {
			return err
		}
		if !created {
			return ErrAlreadyLocked
		}
		return nil
	})
}

// Unlock removes a lock. Tasks created by the lock are kept.
func Unlock(ctx context.Context, sess *store.Session, owner, university int64) error {
	removed, err := sess.RemoveLock(ctx, owner, university)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotLocked
	}
	return nil
}

// ToggleShortlist flips a university's shortlist membership and reports
// whether it is now shortlisted. Adding completes the first open task that
// mentions the shortlist.
func ToggleShortlist(ctx context.Context, sess *store.Session, owner, university int64) (bool, error) {
	var added bool
	err := sess.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.GetUniversity(ctx, university); err != nil {
			return err
		}
		present, err := tx.IsShortlisted(ctx, owner, university)
		if err != nil {
			return err
		}
		if present {
			return removeShortlist(ctx, tx, owner, university)
		}
		if _, err := tx.AddShortlist(ctx, owner, university); err != nil {
			return err
		}
		added = true
		_, err = tx.CompleteFirstOpenTodo(ctx, owner, "shortlist")
		return err
	})
	return added, err
}

// RemoveShortlist drops a university from the shortlist. Locked
// universities cannot leave the shortlist.
func RemoveShortlist(ctx context.Context, sess *store.Session, owner, university int64) error {
	return sess.InTx(ctx, func(tx *store.Session) error {
		return removeShortlist(ctx, tx, owner, university)
	})
}

func removeShortlist(ctx context.Context, tx *store.Session, owner, university int64) error {
	locked, err := tx.IsLocked(ctx, owner, university)
	if err != nil {
		return err
	}
	if locked {
		return ErrShortlistLocked
	}
	removed, err := tx.RemoveShortlist(ctx, owner, university)
	if err != nil {
		return err
	}
	if !removed {
		return store.ErrNotFound
	}
	return nil
}

// SyncTasksWithProfile completes tasks already satisfied by the profile:
// a completed exam closes the test-score task and a ready SOP closes the
// SOP task.
func SyncTasksWithProfile(ctx context.Context, sess *store.Session, p *store.Profile) error {
	if p == nil {
		return nil
	}
	if p.IELTSTOEFLStatus == "Completed" || p.GREGMATStatus == "Completed" {
		if _, err := sess.CompleteFirstOpenTodo(ctx, p.UserID, "test score"); err != nil {
			return err
		}
	}
	if p.SOPStatus == "Ready" {
		if _, err := sess.CompleteFirstOpenTodo(ctx, p.UserID, "SOP"); err != nil {
			return err
		}
	}
	return nil
}

// DocumentChecklist returns the default document names for a university in
// country.
func DocumentChecklist(country string) []string {
	docs := []string{"Statement of Purpose (SOP)", "Academic Transcripts", "Resume/CV"}
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "USA", "US", "UNITED STATES":
		return append(docs, "GRE/GMAT Scores", "Letters of Recommendation (3)", "Financial Proof (I-20)")
	case "UK", "UNITED KINGDOM":
		return append(docs, "IELTS/TOEFL Scores", "Letters of Recommendation (2)", "CAS Letter Request")
	default:
		return append(docs, "Language Proficiency Score", "Letters of Recommendation (2)")
	}
}

// EnsureDocuments returns the application documents for a locked
// university, generating the default checklist on first read.
func EnsureDocuments(ctx context.Context, sess *store.Session, owner, university int64) ([]store.Document, error) {
	var docs []store.Document
	err := sess.InTx(ctx, func(tx *store.Session) error {
		locked, err := tx.IsLocked(ctx, owner, university)
		if err != nil {
			return err
		}
		if !locked {
			return ErrNotLocked
		}
		docs, err = tx.ListDocuments(ctx, owner, university)
		if err != nil || len(docs) > 0 {
			return err
		}
		uni, err := tx.GetUniversity(ctx, university)
		if err != nil {
			return err
		}
		docs, err = tx.CreateDocuments(ctx, owner, university, DocumentChecklist(uni.Country))
		return err
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
