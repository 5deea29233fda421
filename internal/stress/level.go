package stress

import (
	"strings"

	"github.com/louisbranch/wfrp-stress/internal/core/check"
	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
)

// Level is the severity of a stressful situation.
type Level int

const (
	LevelMinor Level = iota
	LevelModerate
	LevelMajor
)

func (l Level) String() string {
	switch l {
	case LevelModerate:
		return "moderate"
	case LevelMajor:
		return "major"
	default:
		return "minor"
	}
}

// Difficulty is the test difficulty a level imposes.
func (l Level) Difficulty() check.Difficulty {
	switch l {
	case LevelMajor:
		return check.DifficultyHard
	case LevelModerate:
		return check.DifficultyChallenging
	default:
		return check.DifficultyAverage
	}
}

// ParseLevel reads a level name case-insensitively. Anything unrecognised is
// minor.
func ParseLevel(value string) Level {
	level, err := ParseLevelStrict(value)
	if err != nil {
		return LevelMinor
	}
	return level
}

// ParseLevelStrict reads a level name and rejects unknown values. Empty means
// minor.
func ParseLevelStrict(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "minor":
		return LevelMinor, nil
	case "moderate":
		return LevelModerate, nil
	case "major":
		return LevelMajor, nil
	default:
		return LevelMinor, apperrors.WithMetadata(
			apperrors.CodeStressInvalidLevel,
			"unknown stress level "+value,
			map[string]string{"Level": value},
		)
	}
}

// Skill names the value a stress test is made against.
type Skill string

const (
	SkillCool      Skill = "cool"
	SkillWillpower Skill = "willpower"
)

// Characteristics are the actor values stress depends on. Cool is the Cool
// skill total; zero means the actor has not trained it.
type Characteristics struct {
	Willpower    int
	Intelligence int
	Cool         int
}

// Bonus is the tens digit of a characteristic.
func Bonus(value int) int {
	if value < 0 {
		return 0
	}
	return value / 10
}

// Character builds the resolver's view of an actor.
func (c Characteristics) Character(name string) Character {
	return Character{
		Name:              name,
		WillpowerBonus:    Bonus(c.Willpower),
		IntelligenceBonus: Bonus(c.Intelligence),
	}
}

// TestSetup describes the test a character rolls against a stressful
// situation.
type TestSetup struct {
	Level      Level
	Skill      Skill
	Base       int
	Difficulty check.Difficulty
	Target     int
}

// SetupTest picks Cool when trained, otherwise Willpower, and applies the
// level's difficulty.
func SetupTest(c Characteristics, level Level) TestSetup {
	skill, base := SkillWillpower, c.Willpower
	if c.Cool > 0 {
		skill, base = SkillCool, c.Cool
	}
	difficulty := level.Difficulty()
	return TestSetup{
		Level:      level,
		Skill:      skill,
		Base:       base,
		Difficulty: difficulty,
		Target:     check.Target(base, difficulty),
	}
}

// Outcome evaluates roll against the setup's target.
func (s TestSetup) Outcome(roll int) TestOutcome {
	result := check.Evaluate(roll, s.Target)
	return TestOutcome{
		Roll:          result.Roll,
		Target:        result.Target,
		SuccessLevels: result.SuccessLevels,
		Outcome:       result.Outcome,
	}
}
