package check

import "strings"

// Difficulty adjusts the target number of a test.
type Difficulty int

const (
	DifficultyUnspecified Difficulty = iota
	DifficultyVeryEasy
	DifficultyEasy
	DifficultyAverage
	DifficultyChallenging
	DifficultyDifficult
	DifficultyHard
	DifficultyVeryHard
)

// Modifier returns the amount added to the tested value.
func (d Difficulty) Modifier() int {
	switch d {
	case DifficultyVeryEasy:
		return 60
	case DifficultyEasy:
		return 40
	case DifficultyAverage:
		return 20
	case DifficultyDifficult:
		return -10
	case DifficultyHard:
		return -20
	case DifficultyVeryHard:
		return -30
	default:
		return 0
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyVeryEasy:
		return "very easy"
	case DifficultyEasy:
		return "easy"
	case DifficultyAverage:
		return "average"
	case DifficultyChallenging:
		return "challenging"
	case DifficultyDifficult:
		return "difficult"
	case DifficultyHard:
		return "hard"
	case DifficultyVeryHard:
		return "very hard"
	default:
		return "unspecified"
	}
}

// ParseDifficulty reads a difficulty name. Spaces, dashes and underscores are
// interchangeable ("very hard", "very_hard", "veryhard").
func ParseDifficulty(value string) (Difficulty, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(value)))
	switch key {
	case "veryeasy":
		return DifficultyVeryEasy, true
	case "easy":
		return DifficultyEasy, true
	case "average":
		return DifficultyAverage, true
	case "challenging":
		return DifficultyChallenging, true
	case "difficult":
		return DifficultyDifficult, true
	case "hard":
		return DifficultyHard, true
	case "veryhard":
		return DifficultyVeryHard, true
	default:
		return DifficultyUnspecified, false
	}
}

// Target applies the difficulty to a tested value. Targets never go below 0.
func Target(base int, difficulty Difficulty) int {
	return max(base+difficulty.Modifier(), 0)
}
