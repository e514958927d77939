// Package engine drives a finsight conversation: it repeatedly asks the
// model for the next step, feeds tool output back, handles clarification
// round-trips with the human, and terminates on a final answer, a detected
// tool-call loop, or an abort.
package engine

import (
	"time"

	"github.com/szaher/finsight/internal/llm"
)

// Entry is one turn of the transcript, tagged with its sender.
type Entry struct {
	Role llm.Role `json:"role"`
	Text string   `json:"text"`
}

// Invocation records one tool call the model made during a turn, with the
// result payload it received.
type Invocation struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	Result string         `json:"result"`
	IsErr  bool           `json:"is_err,omitempty"`
}

// TurnResult is the outcome of one model call: text, tool invocations made
// along the way, both, or neither.
type TurnResult struct {
	Text        string
	Invocations []Invocation
	Usage       llm.TokenUsage
}

// Terminal is the state a conversation ends in.
type Terminal string

const (
	// TerminalDone means the model produced a final answer.
	TerminalDone Terminal = "done"
	// TerminalAborted means a fatal model error or an explicit /stop.
	TerminalAborted Terminal = "aborted"
	// TerminalLoopPrevented means the loop guard forced termination.
	TerminalLoopPrevented Terminal = "loop_prevented"
)

// State is the mutable core of one conversation. It is owned by exactly one
// Engine.Run call and never shared across sessions.
type State struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	Transcript    []Entry   `json:"transcript"`
	LastSignature string    `json:"-"`
	RepeatCount   int       `json:"-"`
	TurnCount     int       `json:"turn_count"`
	Answer        string    `json:"answer,omitempty"`
}

// NewState creates conversation state seeded with the user's query.
func NewState(id, query string) *State {
	return &State{
		ID:        id,
		StartedAt: time.Now(),
		Transcript: []Entry{
			{Role: llm.RoleUser, Text: query},
		},
	}
}

// Append adds a transcript entry.
func (s *State) Append(role llm.Role, text string) {
	s.Transcript = append(s.Transcript, Entry{Role: role, Text: text})
}

// Query returns the user's original question.
func (s *State) Query() string {
	for _, e := range s.Transcript {
		if e.Role == llm.RoleUser {
			return e.Text
		}
	}
	return ""
}
