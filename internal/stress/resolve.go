package stress

import "github.com/louisbranch/wfrp-stress/internal/core/check"

// Resolve applies test to the character's stress.
//
// Max is recomputed from the character on every call. A nil state is treated
// as a fresh 0/0 track. When test.Reroll is set, its PreviousDelta is taken
// back out before the new result is applied, so a chain of rerolls of one
// check leaves only the latest delta in place.
//
// Notifications hold the outcome message first and, if the new value is over
// a positive Max, an affliction second.
func Resolve(ch Character, state *State, test TestOutcome) Resolution {
	current := StateOrDefault(state).Refresh(ch)

	previous := 0
	if test.Reroll != nil {
		previous = test.Reroll.PreviousDelta
	}
	// Value as it stood before the result being replaced.
	base := current.Value - previous

	class := Classify(test.Roll, test.Target, test.Outcome)
	delta, primary := outcomeEffect(class, test, base)
	primary.ActorName = ch.Name

	next := State{Value: base + delta, Max: current.Max}
	notifications := []Notification{primary}
	if next.Afflicted() {
		notifications = append(notifications, Notification{
			Kind:      NotificationAffliction,
			ActorName: ch.Name,
		})
	}

	return Resolution{
		State:          next,
		Classification: class,
		Delta:          delta,
		Applied:        next.Value - current.Value,
		Notifications:  notifications,
	}
}

// outcomeEffect picks the raw delta and primary notification. A critical
// cancels all stress held before the test.
func outcomeEffect(class Classification, test TestOutcome, base int) (int, Notification) {
	switch {
	case class == ClassificationFumble:
		return 0, Notification{Kind: NotificationFumble}
	case class == ClassificationCritical:
		return -base, Notification{Kind: NotificationCritical}
	case test.Outcome == check.OutcomeFailure:
		gained := 1 - test.SuccessLevels
		return gained, Notification{Kind: NotificationFail, StressGained: gained}
	default:
		return 0, Notification{Kind: NotificationPass}
	}
}
