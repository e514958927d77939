// Package rules evaluates answer-quality rules against final answers.
// Rules are boolean expressions over the query and the answer; failing
// error-severity rules send feedback back into the conversation, failing
// warnings are only logged.
package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/szaher/finsight/internal/config"
)

// compiled pairs a rule with its compiled expression program.
type compiled struct {
	def     config.Rule
	program *vm.Program
}

// Result is the outcome of evaluating one rule.
type Result struct {
	Name     string
	Passed   bool
	Severity string
	Message  string
	Err      error
}

// Validator evaluates a fixed rule set.
type Validator struct {
	rules []compiled
}

func env(input, output string) map[string]any {
	return map[string]any{
		"input":  input,
		"output": output,
		"words":  func(s string) int { return len(strings.Fields(s)) },
	}
}

// NewValidator compiles every rule expression up front so malformed rules
// fail at startup, not mid-conversation.
func NewValidator(defs []config.Rule) (*Validator, error) {
	v := &Validator{}
	for _, def := range defs {
		program, err := expr.Compile(def.Expr, expr.Env(env("", "")), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", def.Name, err)
		}
		if def.Severity == "" {
			def.Severity = "error"
		}
		v.rules = append(v.rules, compiled{def: def, program: program})
	}
	return v, nil
}

// Len reports the number of compiled rules.
func (v *Validator) Len() int { return len(v.rules) }

// Validate runs every rule against the query/answer pair. An expression
// evaluation error counts as a failure of that rule.
func (v *Validator) Validate(input, output string) []Result {
	results := make([]Result, 0, len(v.rules))
	for _, c := range v.rules {
		r := Result{Name: c.def.Name, Severity: c.def.Severity}
		out, err := expr.Run(c.program, env(input, output))
		if err != nil {
			r.Err = err
			r.Message = fmt.Sprintf("rule %q: evaluation failed: %v", c.def.Name, err)
			results = append(results, r)
			continue
		}
		passed, _ := out.(bool)
		r.Passed = passed
		if !passed {
			r.Message = c.def.Message
			if r.Message == "" {
				r.Message = fmt.Sprintf("rule %q failed", c.def.Name)
			}
		}
		results = append(results, r)
	}
	return results
}

// FailedErrors filters results down to failing error-severity rules.
func FailedErrors(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && r.Severity == "error" {
			failed = append(failed, r)
		}
	}
	return failed
}

// Feedback renders failing rules as a correction prompt for the model.
func Feedback(failed []Result) string {
	var b strings.Builder
	b.WriteString("The previous answer did not pass quality checks. Revise it to address:\n")
	for _, r := range failed {
		b.WriteString("- ")
		b.WriteString(r.Message)
		b.WriteString("\n")
	}
	b.WriteString("Provide the corrected answer.")
	return b.String()
}
