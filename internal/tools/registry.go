// Package tools merges tool descriptors from remote MCP providers and
// locally-bound capabilities into one addressable namespace, and routes
// invocations to the right executor.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/szaher/finsight/internal/llm"
)

// ErrToolNotFound is returned by Invoke when a name resolves to nothing.
var ErrToolNotFound = errors.New("tool not found")

// Descriptor is immutable metadata for one invocable capability.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
	Title       string         `json:"title,omitempty"`
}

// Provider is an external service exposing a discoverable set of named tools.
type Provider interface {
	Name() string
	ListTools(ctx context.Context) ([]Descriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// LocalFunc executes a locally-bound tool.
type LocalFunc func(ctx context.Context, args map[string]any) (string, error)

// LocalTool couples a descriptor with its bound function.
type LocalTool struct {
	Descriptor
	Run LocalFunc
}

// entry routes one name to its executor. The local-vs-remote decision is
// made once, at build time: exactly one of provider and run is set.
type entry struct {
	desc     Descriptor
	provider Provider
	run      LocalFunc
}

// Registry maps tool names to descriptors and executors. It is built fresh
// at session start (and whenever the active provider set changes) and is
// read-only afterwards.
type Registry struct {
	entries map[string]entry
	order   []string
	logger  *slog.Logger
}

// Build fetches descriptors from every provider and merges them with the
// locally-defined tools. When two providers expose a tool of the same name,
// the later provider wins; local tools are appended last and win over any
// remote tool. A provider that fails to list its tools contributes zero
// tools; the failure is logged, never fatal.
func Build(ctx context.Context, providers []Provider, locals []LocalTool, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		entries: make(map[string]entry),
		logger:  logger,
	}

	// List concurrently, merge in provider order so precedence stays
	// deterministic regardless of completion order.
	listed := make([][]Descriptor, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			descs, err := p.ListTools(gctx)
			if err != nil {
				logger.Warn("provider failed to list tools", "provider", p.Name(), "error", err)
				return nil
			}
			listed[i] = descs
			return nil
		})
	}
	_ = g.Wait()

	for i, p := range providers {
		for _, d := range listed[i] {
			r.put(entry{desc: d, provider: p})
		}
	}
	for _, lt := range locals {
		r.put(entry{desc: lt.Descriptor, run: lt.Run})
	}

	return r
}

func (r *Registry) put(e entry) {
	if _, exists := r.entries[e.desc.Name]; !exists {
		r.order = append(r.order, e.desc.Name)
	}
	r.entries[e.desc.Name] = e
}

// Lookup returns the effective descriptor for a name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	e, ok := r.entries[name]
	return e.desc, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.entries) }

// Owner returns the provider name owning a tool, or "local" for a
// locally-bound one. Used for display only.
func (r *Registry) Owner(name string) (string, bool) {
	e, ok := r.entries[name]
	if !ok {
		return "", false
	}
	if e.provider != nil {
		return e.provider.Name(), true
	}
	return "local", true
}

// Invoke resolves a name and executes the tool. Arguments pass through
// unchanged; schemas are advisory and never validated here. Remote failures
// propagate with the provider's original message.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	e, ok := r.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	if e.run != nil {
		return e.run(ctx, args)
	}
	out, err := e.provider.CallTool(ctx, name, args)
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", name, err)
	}
	return out, nil
}

// InvokeAll executes a batch of tool calls concurrently. Results come back
// indexed by call position, so downstream consumers see call order, not
// completion order. A failed call yields an IsError result rather than
// aborting the batch.
func (r *Registry) InvokeAll(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(idx int, tc llm.ToolCall) {
			defer wg.Done()
			output, err := r.Invoke(ctx, tc.Name, tc.Input)
			if err != nil {
				results[idx] = llm.ToolResult{
					ToolUseID: tc.ID,
					Content:   err.Error(),
					IsError:   true,
				}
				return
			}
			results[idx] = llm.ToolResult{
				ToolUseID: tc.ID,
				Content:   output,
			}
		}(i, call)
	}

	wg.Wait()
	return results
}

// Definitions returns the registered tools as model tool definitions, in
// registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        e.desc.Name,
			Description: e.desc.Description,
			InputSchema: e.desc.InputSchema,
		})
	}
	return defs
}
