package stress

import (
	"strconv"

	"github.com/louisbranch/wfrp-stress/internal/core/check"
	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
)

// State is a character's stress track. Value may exceed Max; that is what
// triggers an affliction.
type State struct {
	Value int
	Max   int
}

// StateOrDefault returns the stored state, or a fresh 0/0 state when none
// exists yet.
func StateOrDefault(state *State) State {
	if state == nil {
		return State{}
	}
	return *state
}

// Character is the part of an actor the resolver reads.
type Character struct {
	Name              string
	WillpowerBonus    int
	IntelligenceBonus int
}

// MaxStress is the stress a character can carry before an affliction.
func MaxStress(willpowerBonus, intelligenceBonus int) int {
	return willpowerBonus + intelligenceBonus
}

// Refresh recomputes Max from the character's current bonuses.
func (s State) Refresh(ch Character) State {
	s.Max = MaxStress(ch.WillpowerBonus, ch.IntelligenceBonus)
	return s
}

// Afflicted reports whether the state has gone past its maximum. A zero or
// negative maximum never afflicts.
func (s State) Afflicted() bool {
	return s.Max > 0 && s.Value > s.Max
}

// RerollKind names how a test came to replace an earlier result.
type RerollKind int

const (
	RerollKindUnspecified RerollKind = iota
	// RerollKindFortune is a full reroll paid with a fortune point.
	RerollKindFortune
	// RerollKindAddSL is a fortune point spent to add one SL to the result.
	RerollKindAddSL
)

func (k RerollKind) String() string {
	switch k {
	case RerollKindFortune:
		return "fortune"
	case RerollKindAddSL:
		return "add_sl"
	default:
		return "unspecified"
	}
}

// Reroll carries the delta recorded for the result being replaced.
type Reroll struct {
	Kind          RerollKind
	PreviousDelta int
}

// TestOutcome is one resolved test.
type TestOutcome struct {
	Roll          int
	Target        int
	SuccessLevels int
	Outcome       check.Outcome
	Reroll        *Reroll
}

// Validate checks the fields Resolve relies on. Resolve itself never
// validates; hosts call this at their boundary.
func (t TestOutcome) Validate() error {
	if !check.ValidRoll(t.Roll) {
		return apperrors.WithMetadata(
			apperrors.CodeTestInvalidRoll,
			"roll "+strconv.Itoa(t.Roll)+" outside 1-100",
			map[string]string{"Roll": strconv.Itoa(t.Roll)},
		)
	}
	if t.Outcome != check.OutcomeSuccess && t.Outcome != check.OutcomeFailure {
		return apperrors.WithMetadata(
			apperrors.CodeTestInvalidOutcome,
			"outcome must be success or failure",
			map[string]string{"Outcome": t.Outcome.String()},
		)
	}
	return nil
}

// NotificationKind identifies a message the host should deliver.
type NotificationKind int

const (
	NotificationUnspecified NotificationKind = iota
	NotificationFumble
	NotificationCritical
	NotificationFail
	NotificationPass
	NotificationAffliction
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationFumble:
		return "fumble"
	case NotificationCritical:
		return "critical"
	case NotificationFail:
		return "fail"
	case NotificationPass:
		return "pass"
	case NotificationAffliction:
		return "affliction"
	default:
		return "unspecified"
	}
}

// Notification is one message with the data needed to render it.
// StressGained is only meaningful for NotificationFail.
type Notification struct {
	Kind         NotificationKind
	ActorName    string
	StressGained int
}

// Resolution is the result of resolving one test.
type Resolution struct {
	State          State
	Classification Classification
	// Delta is the stress this result accounts for. Hosts keep it so a later
	// reroll of the same check can pass it back as Reroll.PreviousDelta.
	Delta int
	// Applied is the net change to State.Value, including any reroll
	// correction.
	Applied       int
	Notifications []Notification
}

// Afflicted reports whether the resolution raised an affliction.
func (r Resolution) Afflicted() bool {
	for _, n := range r.Notifications {
		if n.Kind == NotificationAffliction {
			return true
		}
	}
	return false
}
