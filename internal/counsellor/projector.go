package counsellor

import (
	"context"
	"fmt"

	"counsellor/internal/store"
)

// TaskView is a task reduced to what the chat response carries.
type TaskView struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Task statuses.
const (
	TaskDone    = "done"
	TaskPending = "pending"
)

// Snapshot is the owner's state as read after execution.
type Snapshot struct {
	Stage       Stage      `json:"updated_stage"`
	Shortlisted []int64    `json:"shortlisted_universities"`
	Locked      []int64    `json:"locked_universities"`
	Tasks       []TaskView `json:"tasks"`
}

// Project re-reads selections and tasks and recomputes the stage. Lists are
// never nil so they encode as [].
func Project(ctx context.Context, sess *store.Session, owner int64) (Snapshot, error) {
	shortlisted, err := sess.ShortlistedIDs(ctx, owner)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read shortlist: %w", err)
	}
	locked, err := sess.LockedIDs(ctx, owner)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read locks: %w", err)
	}
	todos, err := sess.ListTodos(ctx, owner, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read tasks: %w", err)
	}

	tasks := make([]TaskView, 0, len(todos))
	for _, t := range todos {
		status := TaskPending
		if t.Completed {
			status = TaskDone
		}
		tasks = append(tasks, TaskView{ID: t.ID, Title: t.Title, Status: status})
	}

	return Snapshot{
		Stage:       Classify(shortlisted, locked),
		Shortlisted: nonNil(shortlisted),
		Locked:      nonNil(locked),
		Tasks:       tasks,
	}, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
