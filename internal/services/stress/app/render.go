package app

import (
	"github.com/louisbranch/wfrp-stress/internal/platform/i18n/catalog"
	"github.com/louisbranch/wfrp-stress/internal/stress"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys for stress notifications, defined in the embedded en-US catalog.
const (
	MessageFumble     = "stress.fumble"
	MessageCritical   = "stress.critical"
	MessageFail       = "stress.fail"
	MessagePass       = "stress.pass"
	MessageAffliction = "stress.affliction"
)

var printer = newPrinter()

func newPrinter() *message.Printer {
	catalog.Default()
	return message.NewPrinter(language.AmericanEnglish)
}

// MessageKey returns the catalog key for kind, or "" when it has none.
func MessageKey(kind stress.NotificationKind) string {
	switch kind {
	case stress.NotificationFumble:
		return MessageFumble
	case stress.NotificationCritical:
		return MessageCritical
	case stress.NotificationFail:
		return MessageFail
	case stress.NotificationPass:
		return MessagePass
	case stress.NotificationAffliction:
		return MessageAffliction
	default:
		return ""
	}
}

// Render formats one notification as an English chat line.
func Render(n stress.Notification) string {
	key := MessageKey(n.Kind)
	if key == "" {
		return ""
	}
	if n.Kind == stress.NotificationFail {
		return printer.Sprintf(key, n.ActorName, n.StressGained)
	}
	return printer.Sprintf(key, n.ActorName)
}

// RenderAll formats notifications in order.
func RenderAll(notifications []stress.Notification) []string {
	out := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if line := Render(n); line != "" {
			out = append(out, line)
		}
	}
	return out
}
