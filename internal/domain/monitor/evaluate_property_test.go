package monitor

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// =============================================================================
// Generators
// =============================================================================

// genSpec draws a valid spec; minHysteresisShare forces a non-empty dead band when > 0.
func genSpec(t *rapid.T, minHysteresisShare float64) RangeSpec {
	low := rapid.Float64Range(-1000, 1000).Draw(t, "min")
	width := rapid.Float64Range(1, 1000).Draw(t, "width")
	hysteresis := rapid.Float64Range(width*minHysteresisShare, width*0.49).Draw(t, "hysteresis")

	return RangeSpec{
		Topic:      "prop/topic",
		Min:        low,
		Max:        low + width,
		Hysteresis: hysteresis,
	}
}

// =============================================================================
// Properties
// =============================================================================

// TestProperty_TriggerFromNormal: from Normal, the latch trips iff the reading is
// at or beyond a trigger bound, with exactly one EnteredOutOfRange transition.
func TestProperty_TriggerFromNormal(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		spec := genSpec(t, 0)
		value := rapid.Float64Range(spec.Min-2000, spec.Max+2000).Draw(t, "value")

		status, tr := Evaluate(value, spec, StatusNormal)
		trips := value >= spec.UpperTrigger() || value <= spec.LowerTrigger()

		if trips != (status == StatusOutOfRange) {
			t.Fatalf("value %v: status %v, trips %v", value, status, trips)
		}

		if trips != (tr != nil) {
			t.Fatalf("value %v: transition %v, trips %v", value, tr, trips)
		}

		if tr != nil && tr.Direction != EnteredOutOfRange {
			t.Fatalf("unexpected direction %v", tr.Direction)
		}
	})
}

// TestProperty_BeyondTriggerAlwaysTrips: every reading past a trigger bound alerts.
func TestProperty_BeyondTriggerAlwaysTrips(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		spec := genSpec(t, 0)
		delta := rapid.Float64Range(0, 1000).Draw(t, "delta")

		for _, value := range []float64{spec.UpperTrigger() + delta, spec.LowerTrigger() - delta} {
			status, tr := Evaluate(value, spec, StatusNormal)
			if status != StatusOutOfRange || tr == nil || tr.Direction != EnteredOutOfRange {
				t.Fatalf("value %v did not trip: %v %v", value, status, tr)
			}
		}
	})
}

// TestProperty_RecoverFromOutOfRange: from OutOfRange, the latch clears iff the
// reading is strictly inside the inner band.
func TestProperty_RecoverFromOutOfRange(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		spec := genSpec(t, 0)
		value := rapid.Float64Range(spec.Min-2000, spec.Max+2000).Draw(t, "value")

		status, tr := Evaluate(value, spec, StatusOutOfRange)
		recovers := spec.LowerRecover() < value && value < spec.UpperRecover()

		if recovers != (status == StatusNormal) {
			t.Fatalf("value %v: status %v, recovers %v", value, status, recovers)
		}

		if recovers != (tr != nil) {
			t.Fatalf("value %v: transition %v, recovers %v", value, tr, recovers)
		}

		if tr != nil && tr.Direction != ReturnedToNormal {
			t.Fatalf("unexpected direction %v", tr.Direction)
		}
	})
}

// TestProperty_Idempotent: repeating the same reading never produces a second transition.
func TestProperty_Idempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		spec := genSpec(t, 0)
		value := rapid.Float64Range(spec.Min-2000, spec.Max+2000).Draw(t, "value")
		repeats := rapid.IntRange(2, 20).Draw(t, "repeats")
		start := Status(rapid.IntRange(int(StatusNormal), int(StatusOutOfRange)).Draw(t, "start"))

		status := start
		count := 0

		for range repeats {
			var tr *Transition

			status, tr = Evaluate(value, spec, status)
			if tr != nil {
				count++
			}
		}

		if count > 1 {
			t.Fatalf("value %v from %v produced %d transitions", value, start, count)
		}
	})
}

// TestProperty_NoOscillationInDeadBand: readings between the recover and
// trigger bounds on one side never add transitions after the initial alert.
func TestProperty_NoOscillationInDeadBand(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		spec := genSpec(t, 0.01)
		upper := rapid.Bool().Draw(t, "upper")
		steps := rapid.IntRange(1, 50).Draw(t, "steps")

		first := spec.UpperTrigger()
		if !upper {
			first = spec.LowerTrigger()
		}

		status, tr := Evaluate(first, spec, StatusNormal)
		if tr == nil {
			t.Fatalf("initial reading %v did not trip", first)
		}

		for i := range steps {
			var value float64
			if upper {
				value = rapid.Float64Range(spec.UpperRecover(), spec.UpperTrigger()).Draw(t, fmt.Sprintf("v%d", i))
			} else {
				value = rapid.Float64Range(spec.LowerTrigger(), spec.LowerRecover()).Draw(t, fmt.Sprintf("v%d", i))
			}

			status, tr = Evaluate(value, spec, status)
			if tr != nil {
				t.Fatalf("dead-band reading %v produced %v", value, tr.Direction)
			}
		}
	})
}
