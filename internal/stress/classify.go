package stress

import "github.com/louisbranch/wfrp-stress/internal/core/check"

// Classification is the dramatic weight of a test outcome.
type Classification int

const (
	ClassificationOrdinary Classification = iota
	ClassificationCritical
	ClassificationFumble
)

func (c Classification) String() string {
	switch c {
	case ClassificationCritical:
		return "critical"
	case ClassificationFumble:
		return "fumble"
	default:
		return "ordinary"
	}
}

// Classify maps a roll, its target and the reported outcome to a
// Classification. Rolls are expected in 1-100; nothing is validated here.
func Classify(roll, target int, outcome check.Outcome) Classification {
	switch {
	case outcome == check.OutcomeFailure && IsFumble(roll, target):
		return ClassificationFumble
	case outcome == check.OutcomeSuccess && IsCritical(roll, target):
		return ClassificationCritical
	default:
		return ClassificationOrdinary
	}
}

// IsDouble reports whether both digits of a two-digit roll match.
func IsDouble(roll int) bool {
	return roll%11 == 0
}

// IsFumble reports whether a failed roll is a fumble.
func IsFumble(roll, target int) bool {
	return (roll > target && IsDouble(roll)) || roll == 100 || roll == 99
}

// IsCritical reports whether a successful roll is a critical.
func IsCritical(roll, target int) bool {
	return roll <= target && IsDouble(roll)
}
