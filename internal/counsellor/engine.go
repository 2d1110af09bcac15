package counsellor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counsellor/internal/logging"
	"counsellor/internal/perception"
	"counsellor/internal/store"

	"go.uber.org/zap"
)

// ErrProfileMissing is returned by Respond when the owner has not finished
// onboarding.
var ErrProfileMissing = errors.New("please complete onboarding first")

// DegradedReasoning marks a result produced without a provider reply.
const DegradedReasoning = "LLM Failure"

// Result is the caller-facing outcome of one chat interaction.
type Result struct {
	Message   string       `json:"message"`
	Actions   []WireAction `json:"actions"`
	Reasoning string       `json:"reasoning"`
	Snapshot
}

// Engine runs one chat interaction end to end.
type Engine struct {
	reasoner perception.Reasoner
	builder  *ContextBuilder
	executor *Executor
	logger   *zap.Logger
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine. A nil reasoner is allowed; every interaction
// then degrades with perception.ErrNoProvider.
func NewEngine(reasoner perception.Reasoner, builder *ContextBuilder, opts ...Option) *Engine {
	e := &Engine{reasoner: reasoner, builder: builder, logger: logging.Zap(logging.CategoryEngine)}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics != nil && e.reasoner != nil {
		e.reasoner = perception.NewTracingReasoner(e.reasoner, e.metrics)
	}
	e.executor = NewExecutor(e.logger.Named("executor"), e.metrics)
	return e
}

// Respond answers one message from owner. Provider and parse failures never
// surface as errors; only store failures and a missing profile do.
func (e *Engine) Respond(ctx context.Context, sess *store.Session, owner int64, message string) (*Result, error) {
	start := time.Now()
	log := e.logger.With(zap.Int64("owner", owner))

	profile, err := sess.GetProfile(ctx, owner)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	shortlisted, err := sess.ShortlistedIDs(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read shortlist: %w", err)
	}
	locked, err := sess.LockedIDs(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read locks: %w", err)
	}
	stage := Classify(shortlisted, locked)
	e.metrics.IncInteraction(stage)

	digest, err := e.builder.Build(ctx, sess, profile, stage, shortlisted, locked)
	if err != nil {
		return nil, err
	}

	raw, err := e.submit(ctx, Instruction(digest, message))
	if err != nil {
		log.Warn("reasoning failed", zap.String("stage", string(stage)), zap.Error(err))
		return e.degraded(ctx, sess, owner, err)
	}

	in := Interpret(raw)
	if in.Fallback {
		e.metrics.IncFallback()
		log.Info("provider reply was not JSON", zap.Int("len", len(raw)))
	}

	outcomes := e.executor.Apply(ctx, sess, owner, DecodeAll(in.Actions))

	snap, err := Project(ctx, sess, owner)
	if err != nil {
		return nil, err
	}

	log.Info("interaction complete",
		zap.String("stage", string(stage)),
		zap.String("updated_stage", string(snap.Stage)),
		zap.Int("candidates", digest.CandidateCount),
		zap.Int("actions", len(outcomes)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Message:   in.Message,
		Actions:   in.Actions,
		Reasoning: in.Reasoning,
		Snapshot:  snap,
	}, nil
}

func (e *Engine) submit(ctx context.Context, instruction string) (string, error) {
	if e.reasoner == nil {
		return "", perception.ErrNoProvider
	}
	return e.reasoner.Submit(ctx, instruction)
}

// degraded builds the apology result. Nothing has been executed, so the
// snapshot is the state before the call.
func (e *Engine) degraded(ctx context.Context, sess *store.Session, owner int64, cause error) (*Result, error) {
	snap, err := Project(ctx, sess, owner)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message:   fmt.Sprintf("I'm having trouble thinking right now. Error: %v", cause),
		Actions:   []WireAction{},
		Reasoning: DegradedReasoning,
		Snapshot:  snap,
	}, nil
}
