package rules

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/szaher/finsight/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidatorCompileError(t *testing.T) {
	_, err := NewValidator([]config.Rule{{Name: "broken", Expr: "output +"}})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the rule: %v", err)
	}
}

func TestValidatorNonBoolRejected(t *testing.T) {
	// expr.AsBool() makes non-boolean expressions a compile-time error.
	if _, err := NewValidator([]config.Rule{{Name: "str", Expr: `"hello"`}}); err == nil {
		t.Fatal("expected compile error for non-boolean expression")
	}
}

func TestValidate(t *testing.T) {
	v, err := NewValidator([]config.Rule{
		{Name: "cites-source", Expr: `output contains "http"`, Message: "cite a source", Severity: "error"},
		{Name: "long-enough", Expr: `words(output) >= 5`, Severity: "warning"},
		{Name: "echoes-input", Expr: `input != output`},
	})
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	results := v.Validate("AAPL price?", "It closed at 230, see https://example.com.")
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("rule %q failed: %s", r.Name, r.Message)
		}
	}

	results = v.Validate("AAPL price?", "230.")
	failed := FailedErrors(results)
	if len(failed) != 1 || failed[0].Name != "cites-source" {
		t.Errorf("FailedErrors = %+v, want only cites-source", failed)
	}
	if !strings.Contains(Feedback(failed), "cite a source") {
		t.Errorf("Feedback missing rule message: %q", Feedback(failed))
	}
}

func TestCheckerNoRules(t *testing.T) {
	c, err := NewChecker(nil, discard())
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	if c != nil {
		t.Error("expected nil checker for empty rule set")
	}
}

func TestCheckerRetriesThenAccepts(t *testing.T) {
	c, err := NewChecker([]config.Rule{
		{Name: "cites-source", Expr: `output contains "http"`, Message: "cite a source", MaxRetries: 2},
	}, discard())
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}

	// Two rejections with feedback, then the rule exhausts its retries and
	// the answer is accepted as-is.
	for i := 0; i < 2; i++ {
		feedback, ok := c.Check("q", "no sources here")
		if ok {
			t.Fatalf("attempt %d: expected rejection", i+1)
		}
		if !strings.Contains(feedback, "cite a source") {
			t.Errorf("attempt %d: feedback = %q", i+1, feedback)
		}
	}
	if _, ok := c.Check("q", "still no sources"); !ok {
		t.Error("exhausted rule must accept the answer")
	}
}

func TestCheckerWarningsNeverReject(t *testing.T) {
	c, err := NewChecker([]config.Rule{
		{Name: "long-enough", Expr: `words(output) >= 50`, Severity: "warning"},
	}, discard())
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	if _, ok := c.Check("q", "short"); !ok {
		t.Error("warning-severity failures must not reject the answer")
	}
}

func TestCheckerPassingAnswer(t *testing.T) {
	c, err := NewChecker([]config.Rule{
		{Name: "cites-source", Expr: `output contains "http"`},
	}, discard())
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	if feedback, ok := c.Check("q", "see https://example.com"); !ok || feedback != "" {
		t.Errorf("Check = (%q, %v), want accepted with no feedback", feedback, ok)
	}
}
