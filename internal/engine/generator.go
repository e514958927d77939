package engine

import (
	"context"
	"log/slog"

	"github.com/szaher/finsight/internal/llm"
	"github.com/szaher/finsight/internal/telemetry"
)

// defaultMaxToolTurns bounds the inner tool-execution loop of one Generate
// call. The outer conversation loop has its own guard; this only stops a
// single turn from running away.
const defaultMaxToolTurns = 10

// ToolRunner is what the generator needs from the tool registry: the
// definitions to offer the model and batch execution of its calls.
type ToolRunner interface {
	Definitions() []llm.ToolDefinition
	InvokeAll(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult
}

// GeneratorConfig configures a ModelGenerator.
type GeneratorConfig struct {
	Model        string
	System       string
	MaxTokens    int
	MaxToolTurns int
	TokenBudget  int
	Logger       *slog.Logger
	Metrics      *telemetry.Metrics
}

// ModelGenerator implements Generator over an llm.Client and a tool
// registry. It runs the reason-act-observe loop for one conversation turn:
// the model may call tools repeatedly; the generator executes them, feeds
// results back, and returns once the model stops asking for tools. Every
// invocation is recorded in call order for the loop-guard signature.
type ModelGenerator struct {
	client  llm.Client
	tools   ToolRunner
	cfg     GeneratorConfig
	tracker *llm.TokenTracker
	logger  *slog.Logger
}

// NewModelGenerator creates a generator.
func NewModelGenerator(client llm.Client, tools ToolRunner, cfg GeneratorConfig) *ModelGenerator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxToolTurns <= 0 {
		cfg.MaxToolTurns = defaultMaxToolTurns
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelGenerator{
		client:  client,
		tools:   tools,
		cfg:     cfg,
		tracker: llm.NewTokenTracker(cfg.TokenBudget),
		logger:  logger,
	}
}

// Generate runs one conversation turn.
func (g *ModelGenerator) Generate(ctx context.Context, transcript []Entry, withTools bool) (*TurnResult, error) {
	messages := toMessages(transcript)
	result := &TurnResult{}

	for turn := 0; turn < g.cfg.MaxToolTurns; turn++ {
		if err := g.tracker.CheckBudget(g.cfg.MaxTokens); err != nil {
			return nil, err
		}

		req := llm.ChatRequest{
			Model:     g.cfg.Model,
			Messages:  messages,
			System:    g.cfg.System,
			MaxTokens: g.cfg.MaxTokens,
		}
		if withTools && g.tools != nil {
			req.Tools = g.tools.Definitions()
		}

		resp, err := g.client.Chat(ctx, req)
		if err != nil {
			return nil, err
		}
		g.tracker.Add(resp.Usage)
		result.Usage = g.tracker.Usage()

		if resp.Content != "" {
			result.Text = resp.Content
		}
		if len(resp.ToolCalls) == 0 || resp.StopReason != llm.StopToolUse {
			return result, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		toolResults := g.tools.InvokeAll(ctx, resp.ToolCalls)
		for i := range toolResults {
			tc := resp.ToolCalls[i]
			tr := toolResults[i]

			status := "ok"
			if tr.IsError {
				status = "error"
				g.logger.Warn("tool invocation failed", "tool", tc.Name, "error", tr.Content)
			}
			g.cfg.Metrics.RecordToolInvocation(tc.Name, status)

			result.Invocations = append(result.Invocations, Invocation{
				Name:   tc.Name,
				Args:   tc.Input,
				Result: tr.Content,
				IsErr:  tr.IsError,
			})
			messages = append(messages, llm.Message{
				Role:       llm.RoleUser,
				ToolResult: &tr,
			})
		}
	}

	// Tool-turn cap reached; return what we have. The conversation engine
	// decides what happens next.
	g.logger.Warn("tool turn cap reached", "cap", g.cfg.MaxToolTurns)
	return result, nil
}

func toMessages(transcript []Entry) []llm.Message {
	messages := make([]llm.Message, len(transcript))
	for i, e := range transcript {
		messages[i] = llm.Message{Role: e.Role, Content: e.Text}
	}
	return messages
}
