package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/szaher/finsight/internal/llm"
	"github.com/szaher/finsight/internal/telemetry"
	"github.com/szaher/finsight/internal/ui"
)

// Generator is the model-call capability: given the transcript so far,
// produce the next step. A Generator may execute tools itself before
// returning; every invocation it made comes back in call order.
type Generator interface {
	Generate(ctx context.Context, transcript []Entry, withTools bool) (*TurnResult, error)
}

// Instructions the engine appends to steer the model.
const (
	elaborateInstruction = "Please elaborate fully. Give the complete answer with supporting data, context, and actionable insights."

	finalAnswerInstruction = "Provide a final answer now based on the information gathered so far."

	bestEffortInstruction = "Proceed with the best possible final answer using the information available."

	concludeInstruction = "Stop calling tools. Answer conclusively now using only the tool output already gathered."

	clarificationPrompt = "Your reply (/run for best effort, /stop to abort): "
)

func summarizeInstruction(result string) string {
	return "Summarize the following tool output to answer the query above. Tool output:\n\n" + result
}

// Checker gates candidate final answers. ok=false rejects the answer and
// feedback is appended as a user turn; implementations own their retry
// accounting and must eventually return ok=true.
type Checker interface {
	Check(query, answer string) (feedback string, ok bool)
}

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Console        ui.Console
	Logger         *slog.Logger
	Retry          llm.RetryPolicy
	Metrics        *telemetry.Metrics
	Checker        Checker
	MinAnswerWords int
	LoopThreshold  int
}

// Engine is the per-session conversation state machine.
type Engine struct {
	gen       Generator
	console   ui.Console
	logger    *slog.Logger
	retry     llm.RetryPolicy
	metrics   *telemetry.Metrics
	checker   Checker
	minWords  int
	threshold int
}

// New creates an Engine around a Generator.
func New(gen Generator, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	console := opts.Console
	if console == nil {
		console = ui.NewStdio(nil, nil)
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = llm.DefaultRetryPolicy()
	}
	minWords := opts.MinAnswerWords
	if minWords <= 0 {
		minWords = DefaultMinAnswerWords
	}
	threshold := opts.LoopThreshold
	if threshold <= 0 {
		threshold = DefaultLoopThreshold
	}
	return &Engine{
		gen:       gen,
		console:   console,
		logger:    logger,
		retry:     retry,
		metrics:   opts.Metrics,
		checker:   opts.Checker,
		minWords:  minWords,
		threshold: threshold,
	}
}

// Run drives the conversation to a terminal state. The recursion of the
// per-turn algorithm is expressed as an iterative loop over mutable State,
// so long clarification chains cannot grow the call stack. Run never
// returns an error to the caller: fatal failures are printed and reported
// as TerminalAborted.
func (e *Engine) Run(ctx context.Context, state *State) Terminal {
	term := e.run(ctx, state)
	e.metrics.RecordConversation(string(term))
	return term
}

func (e *Engine) run(ctx context.Context, state *State) Terminal {
	for {
		state.TurnCount++
		started := time.Now()

		res, err := e.generate(ctx, state.Transcript, true)
		e.metrics.RecordTurn(time.Since(started))
		if err != nil {
			e.console.Display("Model call failed: " + err.Error())
			e.logger.Error("model call failed", "turn", state.TurnCount, "error", err)
			return TerminalAborted
		}

		// Loop guard first: a model stuck on the same tool must be cut
		// off even when it also produces text.
		if len(res.Invocations) > 0 {
			sig := Signature(res.Invocations)
			state.RepeatCount = NextRepeatCount(state.LastSignature, sig, state.RepeatCount)
			state.LastSignature = sig
			e.logger.Debug("tool turn", "signature", sig, "repeat_count", state.RepeatCount)

			if state.RepeatCount >= e.threshold {
				return e.forceConclusion(ctx, state)
			}
		}

		text := res.Text

		// Tool output with no text: ask the model to summarize the first
		// invocation's payload, tools still enabled.
		if text == "" && len(res.Invocations) > 0 {
			sum, err := e.generate(ctx, withEntry(state.Transcript, summarizeInstruction(res.Invocations[0].Result)), true)
			if err != nil {
				e.console.Display("Model call failed: " + err.Error())
				e.logger.Error("summarize call failed", "turn", state.TurnCount, "error", err)
				return TerminalAborted
			}
			text = sum.Text
		}

		// Still nothing: demand a final answer and take another turn.
		if text == "" {
			state.Append(llm.RoleUser, finalAnswerInstruction)
			continue
		}

		state.Append(llm.RoleAssistant, text)

		if IsClarification(text) {
			e.console.Display(text)
			reply, err := e.console.Prompt(clarificationPrompt)
			if err != nil {
				e.logger.Error("clarification prompt failed", "error", err)
				return TerminalAborted
			}
			switch strings.TrimSpace(reply) {
			case "/stop":
				return TerminalAborted
			case "/run":
				state.Append(llm.RoleUser, bestEffortInstruction)
				continue
			default:
				state.Append(llm.RoleUser, reply)
				continue
			}
		}

		if WordCount(text) < e.minWords {
			e.logger.Debug("reply too short, requesting elaboration", "words", WordCount(text))
			state.Append(llm.RoleUser, elaborateInstruction)
			continue
		}

		if e.checker != nil {
			if feedback, ok := e.checker.Check(state.Query(), text); !ok {
				state.Append(llm.RoleUser, feedback)
				continue
			}
		}

		state.Answer = text
		e.console.Display(text)
		return TerminalDone
	}
}

// forceConclusion issues exactly one tool-free call demanding a conclusive
// answer, prints whatever comes back, and terminates. Termination happens
// regardless of the outcome so forward progress is guaranteed.
func (e *Engine) forceConclusion(ctx context.Context, state *State) Terminal {
	e.metrics.RecordLoopTrip()
	e.logger.Warn("loop guard tripped", "signature", state.LastSignature, "repeat_count", state.RepeatCount)

	res, err := e.generate(ctx, withEntry(state.Transcript, concludeInstruction), false)
	if err != nil {
		e.console.Display(fmt.Sprintf("Stopped after repeated %s calls; final summary unavailable: %v", state.LastSignature, err))
		return TerminalLoopPrevented
	}
	if res.Text != "" {
		state.Append(llm.RoleAssistant, res.Text)
		state.Answer = res.Text
		e.console.Display(res.Text)
	}
	return TerminalLoopPrevented
}

// generate wraps a model call in the retry policy.
func (e *Engine) generate(ctx context.Context, transcript []Entry, withTools bool) (*TurnResult, error) {
	var res *TurnResult
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		r, err := e.gen.Generate(ctx, transcript, withTools)
		if err != nil {
			e.metrics.RecordModelCall("error")
			return err
		}
		e.metrics.RecordModelCall("ok")
		res = r
		return nil
	})
	return res, err
}

// withEntry returns a copy of the transcript with one extra user entry,
// leaving the durable transcript untouched.
func withEntry(transcript []Entry, text string) []Entry {
	out := make([]Entry, len(transcript), len(transcript)+1)
	copy(out, transcript)
	return append(out, Entry{Role: llm.RoleUser, Text: text})
}
