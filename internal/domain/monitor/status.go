package monitor

import "strconv"

// Status is the latched state of a topic.
type Status int

const (
	// StatusNormal means the last state-changing reading was within range.
	StatusNormal Status = iota
	// StatusOutOfRange means the topic left the extended band and has not yet
	// re-entered the inner band.
	StatusOutOfRange
)

// String returns the status name used in logs and the status API.
func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// Direction tells which way a Transition went.
type Direction int

const (
	// EnteredOutOfRange is emitted when a Normal topic crosses a trigger bound.
	EnteredOutOfRange Direction = iota + 1
	// ReturnedToNormal is emitted when an OutOfRange topic enters the inner band.
	ReturnedToNormal
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case EnteredOutOfRange:
		return "entered_out_of_range"
	case ReturnedToNormal:
		return "returned_to_normal"
	default:
		return "unknown"
	}
}

// Side names the bound that was violated.
type Side int

const (
	// SideNone is used by ReturnedToNormal transitions.
	SideNone Side = iota
	// SideUpper means the upper trigger was reached.
	SideUpper
	// SideLower means the lower trigger was reached.
	SideLower
)

// Transition is a detected change of the latched status.
// It lives only between Evaluate and the notifier.
type Transition struct {
	Topic     string
	Direction Direction
	Value     float64
	Spec      RangeSpec
	// Side is set for EnteredOutOfRange only.
	Side Side
}

// ViolatedBound returns the trigger bound that was crossed, if any.
func (t *Transition) ViolatedBound() (float64, bool) {
	switch t.Side {
	case SideUpper:
		return t.Spec.UpperTrigger(), true
	case SideLower:
		return t.Spec.LowerTrigger(), true
	default:
		return 0, false
	}
}

// FormatValue renders a reading with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TopicStatus is a read-only view of a monitored topic.
type TopicStatus struct {
	Spec   RangeSpec
	Status Status
}
