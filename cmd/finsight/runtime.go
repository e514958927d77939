package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/szaher/finsight/internal/config"
	"github.com/szaher/finsight/internal/engine"
	"github.com/szaher/finsight/internal/llm"
	"github.com/szaher/finsight/internal/mcp"
	"github.com/szaher/finsight/internal/rules"
	"github.com/szaher/finsight/internal/session"
	"github.com/szaher/finsight/internal/telemetry"
	"github.com/szaher/finsight/internal/tools"
	"github.com/szaher/finsight/internal/ui"
)

// runtime wires config, MCP connections, the tool registry, the model client
// and the session store together for one CLI invocation.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	pool    *mcp.Pool
	metrics *telemetry.Metrics
	client  llm.Client
	model   string
	store   *session.FileStore

	mu       sync.RWMutex
	registry *tools.Registry
}

// newRuntime connects every configured MCP server and builds the initial
// tool registry. Connection failures are logged and skipped so one dead
// server never blocks a session.
func newRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	store, err := session.NewFileStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	client, model := llm.NewClientForModel(cfg.Model)
	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		pool:    mcp.NewPool(),
		metrics: telemetry.NewMetrics(),
		client:  client,
		model:   model,
		store:   store,
	}
	rt.registry = rt.buildRegistry(ctx, cfg)
	return rt, nil
}

// buildRegistry connects servers from cfg and merges their tools with the
// local ones.
func (rt *runtime) buildRegistry(ctx context.Context, cfg *config.Config) *tools.Registry {
	var providers []tools.Provider
	for _, srv := range cfg.Servers {
		client, err := rt.pool.Connect(ctx, srv)
		if err != nil {
			rt.logger.Warn("mcp server unavailable", "server", srv.Name, "error", err)
			continue
		}
		providers = append(providers, tools.FromMCP(client))
	}
	return tools.Build(ctx, providers, []tools.LocalTool{tools.ChartTool()}, rt.logger)
}

// reload swaps in a registry built from a fresh config. Sessions already
// running keep the registry they started with.
func (rt *runtime) reload(ctx context.Context, cfg *config.Config) {
	reg := rt.buildRegistry(ctx, cfg)
	rt.mu.Lock()
	rt.cfg = cfg
	rt.registry = reg
	rt.mu.Unlock()
	rt.logger.Info("tool registry rebuilt", "tools", reg.Len())
}

func (rt *runtime) currentRegistry() *tools.Registry {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.registry
}

// newEngine assembles a conversation engine for one session. A nil console
// falls back to stdio.
func (rt *runtime) newEngine(logger *slog.Logger, console ui.Console) (*engine.Engine, error) {
	rt.mu.RLock()
	cfg := rt.cfg
	reg := rt.registry
	rt.mu.RUnlock()

	checker, err := rules.NewChecker(cfg.Rules, logger)
	if err != nil {
		return nil, err
	}

	gen := engine.NewModelGenerator(rt.client, reg, engine.GeneratorConfig{
		Model:       rt.model,
		System:      cfg.System,
		MaxTokens:   cfg.MaxTokens,
		TokenBudget: cfg.TokenBudget,
		Logger:      logger,
		Metrics:     rt.metrics,
	})

	opts := engine.Options{
		Console: console,
		Logger:  logger,
		Metrics: rt.metrics,
	}
	if checker != nil {
		opts.Checker = checker
	}
	return engine.New(gen, opts), nil
}

// runSession drives one query to completion and persists the result.
func (rt *runtime) runSession(ctx context.Context, query string, console ui.Console) (*session.Record, error) {
	id := session.NewID()
	logger := telemetry.SessionLogger(rt.logger, ctx, id)

	eng, err := rt.newEngine(logger, console)
	if err != nil {
		return nil, err
	}

	state := engine.NewState(id, query)
	term := eng.Run(ctx, state)

	rec := &session.Record{
		ID:         id,
		Query:      query,
		Answer:     state.Answer,
		Terminal:   term,
		Transcript: state.Transcript,
		StartedAt:  state.StartedAt,
		EndedAt:    time.Now(),
		Turns:      state.TurnCount,
	}
	if err := rt.store.Save(rec); err != nil {
		logger.Error("session save failed", "error", err)
	}
	return rec, nil
}

func (rt *runtime) close() {
	if err := rt.pool.Close(); err != nil {
		rt.logger.Warn("closing mcp connections", "error", err)
	}
}
