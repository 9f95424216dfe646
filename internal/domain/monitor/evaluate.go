package monitor

// Evaluate maps a reading and the current status of a topic to its next status.
// A non-nil Transition is returned only when the status changes.
//
// Trigger comparisons are inclusive and recover comparisons are exclusive, so a
// reading sitting exactly on any bound never flips the latch back and forth.
func Evaluate(value float64, spec RangeSpec, current Status) (Status, *Transition) {
	if current == StatusOutOfRange {
		if spec.LowerRecover() < value && value < spec.UpperRecover() {
			return StatusNormal, &Transition{
				Topic:     spec.Topic,
				Direction: ReturnedToNormal,
				Value:     value,
				Spec:      spec,
			}
		}

		// Stays latched, even when jumping to the opposite extreme.
		return StatusOutOfRange, nil
	}

	var side Side

	switch {
	case value >= spec.UpperTrigger():
		side = SideUpper
	case value <= spec.LowerTrigger():
		side = SideLower
	default:
		return StatusNormal, nil
	}

	return StatusOutOfRange, &Transition{
		Topic:     spec.Topic,
		Direction: EnteredOutOfRange,
		Value:     value,
		Spec:      spec,
		Side:      side,
	}
}

// Replay evaluates the values in order, starting from StatusNormal, and returns
// every transition together with the final status.
func Replay(spec RangeSpec, values []float64) ([]Transition, Status) {
	var (
		status      = StatusNormal
		transitions []Transition
	)

	for _, v := range values {
		var t *Transition

		status, t = Evaluate(v, spec, status)
		if t != nil {
			transitions = append(transitions, *t)
		}
	}

	return transitions, status
}
