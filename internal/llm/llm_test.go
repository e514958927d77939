package llm

import (
	"context"
	"errors"
	"testing"
)

// --- ParseModelString ---

func TestParseModelString(t *testing.T) {
	tests := []struct {
		in       string
		provider Provider
		model    string
	}{
		{"ollama/llama3.2", ProviderOllama, "llama3.2"},
		{"openai/gpt-4o", ProviderOpenAI, "gpt-4o"},
		{"anthropic/claude-sonnet-4-20250514", ProviderAnthropic, "claude-sonnet-4-20250514"},
		{"claude-sonnet-4-20250514", ProviderAnthropic, "claude-sonnet-4-20250514"},
		{"gpt-4o", ProviderOpenAI, "gpt-4o"},
		{"o3-mini", ProviderOpenAI, "o3-mini"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			p, m := ParseModelString(tc.in)
			if p != tc.provider || m != tc.model {
				t.Errorf("ParseModelString(%q) = (%s, %q), want (%s, %q)",
					tc.in, p, m, tc.provider, tc.model)
			}
		})
	}
}

// --- MockClient ---

func TestMockClientSequence(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Content: "first"},
		MockResponse{Content: "second"},
	)

	r1, err := mock.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Content != "first" {
		t.Errorf("first response = %q, want %q", r1.Content, "first")
	}

	r2, _ := mock.Chat(context.Background(), ChatRequest{})
	if r2.Content != "second" {
		t.Errorf("second response = %q, want %q", r2.Content, "second")
	}

	// Exhausted: last response repeats
	r3, _ := mock.Chat(context.Background(), ChatRequest{})
	if r3.Content != "second" {
		t.Errorf("third response = %q, want last response repeated", r3.Content)
	}

	if got := len(mock.Calls()); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
}

func TestMockClientError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockClient(MockResponse{Error: boom})

	_, err := mock.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

// --- TokenTracker ---

func TestTokenTrackerBudget(t *testing.T) {
	tr := NewTokenTracker(100)
	tr.Add(TokenUsage{InputTokens: 40, OutputTokens: 30})

	if err := tr.CheckBudget(20); err != nil {
		t.Errorf("CheckBudget(20) within budget, got error: %v", err)
	}
	if err := tr.CheckBudget(40); err == nil {
		t.Error("CheckBudget(40) should exceed the 100-token budget")
	}
	if got := tr.Usage().Total(); got != 70 {
		t.Errorf("Usage().Total() = %d, want 70", got)
	}
}

func TestTokenTrackerUnlimited(t *testing.T) {
	tr := NewTokenTracker(0)
	tr.Add(TokenUsage{InputTokens: 1 << 20})
	if err := tr.CheckBudget(1 << 20); err != nil {
		t.Errorf("unlimited tracker returned error: %v", err)
	}
}
