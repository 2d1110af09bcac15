package counsellor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestApply_ShortlistIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	uni := env.university(t, "MIT", "USA", 1)

	ex := NewExecutor(nil, nil)
	out := ex.Apply(ctx, env.sess, owner, []Action{
		ShortlistUniversity{UniversityID: uni},
		ShortlistUniversity{UniversityID: uni},
	})
	require.Len(t, out, 2)
	assert.Equal(t, ResultApplied, out[0].Result)
	assert.Equal(t, ResultNoop, out[1].Result)

	ids, err := env.sess.ShortlistedIDs(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{uni}, ids)
}

func TestApply_LockBackfillsShortlistAndCreatesBatchOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	uni := env.university(t, "Oxford", "UK", 3)

	out := NewExecutor(nil, nil).Apply(ctx, env.sess, owner, []Action{
		LockUniversity{UniversityID: uni},
		LockUniversity{UniversityID: uni},
	})
	assert.Equal(t, ResultApplied, out[0].Result)
	assert.Equal(t, ResultNoop, out[1].Result)

	shortlisted, err := env.sess.ShortlistedIDs(ctx, owner)
	require.NoError(t, err)
	locked, err := env.sess.LockedIDs(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{uni}, shortlisted)
	assert.Equal(t, []int64{uni}, locked)

	todos, err := env.sess.ListTodos(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, todos, ApplicationTaskCount)
	for _, td := range todos {
		require.NotNil(t, td.UniversityID)
		assert.Equal(t, uni, *td.UniversityID)
		assert.False(t, td.Completed)
	}
	assert.Equal(t, "Prepare Statement of Purpose (SOP)", todos[0].Title)
}

func TestApply_LockIgnoresStage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	uni := env.university(t, "ETH Zurich", "Switzerland", 7)

	// No shortlist: the student is in DISCOVERY and may still lock.
	out := NewExecutor(nil, nil).Apply(ctx, env.sess, owner, []Action{LockUniversity{UniversityID: uni}})
	assert.Equal(t, ResultApplied, out[0].Result)
}

func TestApply_CreateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	out := NewExecutor(nil, nil).Apply(ctx, env.sess, owner, []Action{
		CreateTask{Title: "Book IELTS", Description: "Pick a date"},
		CreateTask{Title: "Book IELTS", Description: "Pick a date"},
		CreateTask{Title: "   "},
		CreateTask{},
	})
	assert.Equal(t, []ActionResult{ResultApplied, ResultApplied, ResultSkipped, ResultSkipped},
		[]ActionResult{out[0].Result, out[1].Result, out[2].Result, out[3].Result})

	todos, err := env.sess.ListTodos(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Pick a date", todos[1].Description)
	assert.Nil(t, todos[0].UniversityID)
}

func TestApply_SkipsMissingIDsAndUnknownTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	out := NewExecutor(nil, nil).Apply(ctx, env.sess, owner, []Action{
		ShortlistUniversity{},
		LockUniversity{},
		NoAction{},
		UnknownAction{Kind: "send_email"},
	})
	for i, o := range out {
		assert.Equal(t, ResultSkipped, o.Result, "action %d", i)
		assert.NoError(t, o.Err)
	}

	snap, err := Project(ctx, env.sess, owner)
	require.NoError(t, err)
	assert.Equal(t, StageDiscovery, snap.Stage)
	assert.Empty(t, snap.Shortlisted)
	assert.Empty(t, snap.Tasks)
}

func TestApply_FailureDoesNotStopLaterActions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	uni := env.university(t, "Toronto", "Canada", 21)

	core, logs := observer.New(zap.WarnLevel)
	out := NewExecutor(zap.New(core), nil).Apply(ctx, env.sess, owner, []Action{
		ShortlistUniversity{UniversityID: uni},
		LockUniversity{UniversityID: 9999},
		CreateTask{Title: "after failure"},
	})
	assert.Equal(t, ResultApplied, out[0].Result)
	assert.Equal(t, ResultFailed, out[1].Result)
	assert.Error(t, out[1].Err)
	assert.Equal(t, ResultApplied, out[2].Result)
	assert.Equal(t, 1, logs.FilterMessage("action failed").Len())

	// The failed lock rolled back entirely: no lock, no batch.
	locked, err := env.sess.LockedIDs(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, locked)
	todos, err := env.sess.ListTodos(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "after failure", todos[0].Title)
}
