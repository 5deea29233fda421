// Package check evaluates percentile tests: a d100 roll against a target.
package check

import "strings"

// Automatic result bands.
const (
	AutoSuccessMax = 5
	AutoFailureMin = 96
)

// Outcome is the pass/fail side of a test.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unspecified"
	}
}

// ParseOutcome reads "success" or "failure", case-insensitively.
func ParseOutcome(value string) Outcome {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "success":
		return OutcomeSuccess
	case "failure":
		return OutcomeFailure
	default:
		return OutcomeUnspecified
	}
}

// ValidRoll reports whether roll is a d100 result.
func ValidRoll(roll int) bool {
	return roll >= 1 && roll <= 100
}

// Result represents the outcome of a percentile test.
type Result struct {
	Roll          int
	Target        int
	Outcome       Outcome
	SuccessLevels int
}

// Succeeded reports whether the test passed.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Evaluate compares roll to target.
//
// The test succeeds when roll <= target. Rolls of 1-5 always succeed and rolls
// of 96-100 always fail. Success levels are the tens digit of the target minus
// the tens digit of the roll; an automatic result whose margin points the
// other way is reported as +0 or -0.
func Evaluate(roll, target int) Result {
	outcome := OutcomeFailure
	switch {
	case roll <= AutoSuccessMax:
		outcome = OutcomeSuccess
	case roll >= AutoFailureMin:
		outcome = OutcomeFailure
	case roll <= target:
		outcome = OutcomeSuccess
	}

	sl := SuccessLevels(roll, target)
	if outcome == OutcomeSuccess && sl < 0 {
		sl = 0
	}
	if outcome == OutcomeFailure && sl > 0 {
		sl = 0
	}
	return Result{
		Roll:          roll,
		Target:        target,
		Outcome:       outcome,
		SuccessLevels: sl,
	}
}

// SuccessLevels returns the raw tens-digit margin between target and roll.
func SuccessLevels(roll, target int) int {
	return tens(target) - tens(roll)
}

func tens(value int) int {
	if value < 0 {
		return -((-value + 9) / 10)
	}
	return value / 10
}
