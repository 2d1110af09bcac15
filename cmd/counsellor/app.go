package main

import (
	"context"
	"errors"
	"fmt"

	"counsellor/internal/catalog"
	"counsellor/internal/counsellor"
	"counsellor/internal/logging"
	"counsellor/internal/perception"
	"counsellor/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app is the wired set of components shared by every subcommand.
type app struct {
	store   *store.Store
	catalog *catalog.Catalog
	engine  *counsellor.Engine
	metrics *counsellor.Metrics
}

// openApp opens the store and builds the engine from the loaded config. A
// missing provider key is not fatal; chat then answers with the degraded
// message.
func openApp(ctx context.Context, reg prometheus.Registerer) (*app, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	reasoner, err := perception.NewReasoner(ctx, cfg.LLM, cfg.GetLLMTimeout())
	switch {
	case errors.Is(err, perception.ErrNoProvider):
		logging.BootWarn("No reasoning provider configured, chat will degrade: %v", err)
	case err != nil:
		_ = st.Close()
		return nil, err
	default:
		logger.Info("reasoning provider ready", zap.String("provider", cfg.LLM.Provider))
	}

	metrics := counsellor.MustNewMetrics(reg)
	engine := counsellor.NewEngine(reasoner,
		counsellor.NewContextBuilder(cat, cfg.Context),
		counsellor.WithLogger(logging.Zap(logging.CategoryEngine)),
		counsellor.WithMetrics(metrics))

	return &app{store: st, catalog: cat, engine: engine, metrics: metrics}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withSession runs fn with a session that is released afterwards.
func (a *app) withSession(ctx context.Context, fn func(*store.Session) error) error {
	sess, err := a.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Release() }()
	return fn(sess)
}

// seed loads the embedded catalog when the table is empty.
func (a *app) seed(ctx context.Context) (int, error) {
	var n int
	err := a.withSession(ctx, func(sess *store.Session) error {
		var err error
		n, err = a.catalog.Seed(ctx, sess)
		return err
	})
	return n, err
}
