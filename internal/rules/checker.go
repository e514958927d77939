package rules

import (
	"log/slog"

	"github.com/szaher/finsight/internal/config"
)

const defaultMaxRetries = 3

// Checker gates final answers on the rule set, tracking revision attempts
// per rule. Once a rule exhausts its retries the answer is accepted anyway
// with a logged warning, so a strict rule can never wedge a conversation.
type Checker struct {
	validator *Validator
	limits    map[string]int
	attempts  map[string]int
	logger    *slog.Logger
}

// NewChecker builds a Checker from rule definitions. A nil return with nil
// error means there are no rules to check.
func NewChecker(defs []config.Rule, logger *slog.Logger) (*Checker, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	v, err := NewValidator(defs)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	limits := make(map[string]int, len(defs))
	for _, d := range defs {
		max := d.MaxRetries
		if max <= 0 {
			max = defaultMaxRetries
		}
		limits[d.Name] = max
	}
	return &Checker{
		validator: v,
		limits:    limits,
		attempts:  make(map[string]int),
		logger:    logger,
	}, nil
}

// Check evaluates the answer. ok=false returns feedback to append as a user
// turn; ok=true accepts the answer (all rules passed, only warnings failed,
// or every failing rule exhausted its retries).
func (c *Checker) Check(query, answer string) (feedback string, ok bool) {
	results := c.validator.Validate(query, answer)

	for _, r := range results {
		if !r.Passed && r.Severity == "warning" {
			c.logger.Warn("answer quality warning", "rule", r.Name, "message", r.Message)
		}
	}

	failed := FailedErrors(results)
	if len(failed) == 0 {
		return "", true
	}

	var retryable []Result
	for _, r := range failed {
		if c.attempts[r.Name] < c.limits[r.Name] {
			c.attempts[r.Name]++
			retryable = append(retryable, r)
		} else {
			c.logger.Warn("answer quality rule exhausted retries, accepting answer",
				"rule", r.Name, "message", r.Message)
		}
	}
	if len(retryable) == 0 {
		return "", true
	}

	c.logger.Info("answer rejected by quality rules", "failed", len(retryable))
	return Feedback(retryable), false
}
