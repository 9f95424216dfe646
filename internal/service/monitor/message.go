package monitor

import (
	"fmt"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
	"github.com/oshokin/range-monitor/internal/notifier"
)

// RenderTransition builds the notification severity and text of a transition.
func RenderTransition(t *domain.Transition) (notifier.Severity, string) {
	rangeText := fmt.Sprintf("[%s, %s] with hysteresis=%s",
		domain.FormatValue(t.Spec.Min),
		domain.FormatValue(t.Spec.Max),
		domain.FormatValue(t.Spec.Hysteresis),
	)

	if t.Direction == domain.ReturnedToNormal {
		return notifier.SeverityInfo, fmt.Sprintf(
			"[INFO] Topic '%s' is back to normal range %s. Current value: %s",
			t.Topic, rangeText, domain.FormatValue(t.Value),
		)
	}

	message := fmt.Sprintf(
		"[ALERT] Topic '%s' is out of range %s. Current value: %s",
		t.Topic, rangeText, domain.FormatValue(t.Value),
	)

	if bound, ok := t.ViolatedBound(); ok {
		side := "upper"
		if t.Side == domain.SideLower {
			side = "lower"
		}

		message += fmt.Sprintf(" (%s trigger %s reached)", side, domain.FormatValue(bound))
	}

	return notifier.SeverityAlert, message
}
