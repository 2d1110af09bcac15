package counsellor

import (
	"context"
	"strings"

	"counsellor/internal/store"

	"go.uber.org/zap"
)

// ActionResult is what happened to one action.
type ActionResult string

const (
	// ResultApplied means the action changed persisted state.
	ResultApplied ActionResult = "applied"
	// ResultNoop means the state already satisfied the action.
	ResultNoop ActionResult = "noop"
	// ResultSkipped means the action was ignored: unknown type, none, or
	// missing payload data.
	ResultSkipped ActionResult = "skipped"
	// ResultFailed means the action's transaction was rolled back.
	ResultFailed ActionResult = "failed"
)

// Outcome reports one executed action.
type Outcome struct {
	Action Action
	Result ActionResult
	Err    error
}

// Executor applies decoded actions to persisted state.
type Executor struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewExecutor creates an Executor. Both arguments may be nil.
func NewExecutor(logger *zap.Logger, metrics *Metrics) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger, metrics: metrics}
}

// Apply runs actions in order. Each action commits in its own transaction
// before the next starts, so a failure leaves earlier actions applied and
// later actions still run.
func (e *Executor) Apply(ctx context.Context, sess *store.Session, owner int64, actions []Action) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	for i, a := range actions {
		var res ActionResult
		err := sess.InTx(ctx, func(tx *store.Session) error {
			var err error
			res, err = e.apply(ctx, tx, owner, a)
			return err
		})
		if err != nil {
			res = ResultFailed
			e.logger.Warn("action failed",
				zap.Int64("owner", owner),
				zap.Int("index", i),
				zap.String("type", a.Type()),
				zap.Error(err))
		} else {
			e.logger.Debug("action executed",
				zap.Int64("owner", owner),
				zap.Int("index", i),
				zap.String("type", a.Type()),
				zap.String("result", string(res)))
		}
		e.metrics.ObserveAction(metricType(a), res)
		outcomes = append(outcomes, Outcome{Action: a, Result: res, Err: err})
	}
	return outcomes
}

func (e *Executor) apply(ctx context.Context, tx *store.Session, owner int64, a Action) (ActionResult, error) {
	switch act := a.(type) {
	case ShortlistUniversity:
		if act.UniversityID <= 0 {
			return ResultSkipped, nil
		}
		created, err := tx.AddShortlist(ctx, owner, act.UniversityID)
		return changed(created), err

	case LockUniversity:
		if act.UniversityID <= 0 {
			return ResultSkipped, nil
		}
		created, err := CommitToUniversity(ctx, tx, owner, act.UniversityID)
		return changed(created), err

	case CreateTask:
		if strings.TrimSpace(act.Title) == "" {
			return ResultSkipped, nil
		}
		_, err := tx.CreateTodo(ctx, owner, store.NewTodo{Title: act.Title, Description: act.Description})
		return ResultApplied, err

	case NoAction, UnknownAction:
		return ResultSkipped, nil

	default:
		return ResultSkipped, nil
	}
}

func changed(created bool) ActionResult {
	if created {
		return ResultApplied
	}
	return ResultNoop
}

// metricType bounds the label set: provider-invented types share one label.
func metricType(a Action) string {
	if _, ok := a.(UnknownAction); ok {
		return "unknown"
	}
	return a.Type()
}
