package engine

import "strings"

// DefaultLoopThreshold is how many consecutive identical tool-call turns are
// tolerated before the conversation is force-terminated.
const DefaultLoopThreshold = 3

// Signature returns the ordered, comma-joined tool names invoked in one
// turn. Order is call order: ["b","a"] yields "b,a", not "a,b". Arguments
// are excluded, so two calls to the same tool with different queries count
// as identical.
func Signature(invocations []Invocation) string {
	if len(invocations) == 0 {
		return ""
	}
	names := make([]string, len(invocations))
	for i, inv := range invocations {
		names[i] = inv.Name
	}
	return strings.Join(names, ",")
}

// NextRepeatCount advances the consecutive-repeat counter: a non-empty
// signature equal to the previous one increments the count, anything else
// resets it to zero.
func NextRepeatCount(previous, current string, count int) int {
	if current != "" && current == previous {
		return count + 1
	}
	return 0
}
