package monitor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTopicRequired is returned when a spec has an empty topic.
	ErrTopicRequired = errors.New("topic must be provided")
	// ErrNonFiniteBound is returned when min, max or hysteresis is NaN or infinite.
	ErrNonFiniteBound = errors.New("min_value, max_value and hysteresis must be finite numbers")
	// ErrEmptyRange is returned when min_value is not strictly below max_value.
	ErrEmptyRange = errors.New("min_value must be less than max_value")
	// ErrNegativeHysteresis is returned when hysteresis is below zero.
	ErrNegativeHysteresis = errors.New("hysteresis must not be negative")
	// ErrHysteresisTooWide is returned when the recover bounds would overlap.
	ErrHysteresisTooWide = errors.New("hysteresis must be less than half of (max_value - min_value)")
)

// RangeSpec is the acceptable range of a single topic.
// It is built once at startup and never modified afterwards.
type RangeSpec struct {
	// Topic is the subscription topic and the key of the topic state.
	Topic string
	// Min is the lower bound of the acceptable range.
	Min float64
	// Max is the upper bound of the acceptable range.
	Max float64
	// Hysteresis widens the trigger band and narrows the recover band.
	Hysteresis float64
}

// SpecError reports an invalid RangeSpec together with its topic.
type SpecError struct {
	Topic string
	Err   error
}

// Error implements the error interface.
func (e *SpecError) Error() string {
	return fmt.Sprintf("topic %q: %v", e.Topic, e.Err)
}

// Unwrap returns the violated constraint.
func (e *SpecError) Unwrap() error {
	return e.Err
}

// Validate checks the range constraints: min < max, hysteresis >= 0 and
// hysteresis < (max - min) / 2.
func (s RangeSpec) Validate() error {
	if s.Topic == "" {
		return ErrTopicRequired
	}

	var err error

	switch {
	case !isFinite(s.Min) || !isFinite(s.Max) || !isFinite(s.Hysteresis):
		err = ErrNonFiniteBound
	case s.Min >= s.Max:
		err = fmt.Errorf("%w (min_value=%s, max_value=%s)", ErrEmptyRange, FormatValue(s.Min), FormatValue(s.Max))
	case s.Hysteresis < 0:
		err = fmt.Errorf("%w (hysteresis=%s)", ErrNegativeHysteresis, FormatValue(s.Hysteresis))
	case s.Hysteresis >= (s.Max-s.Min)/2:
		err = fmt.Errorf("%w (hysteresis=%s, limit=%s)",
			ErrHysteresisTooWide, FormatValue(s.Hysteresis), FormatValue((s.Max-s.Min)/2))
	}

	if err != nil {
		return &SpecError{Topic: s.Topic, Err: err}
	}

	return nil
}

// UpperTrigger is the value at or above which a Normal topic goes out of range.
func (s RangeSpec) UpperTrigger() float64 {
	return s.Max + s.Hysteresis
}

// LowerTrigger is the value at or below which a Normal topic goes out of range.
func (s RangeSpec) LowerTrigger() float64 {
	return s.Min - s.Hysteresis
}

// UpperRecover is the exclusive upper edge of the inner band.
func (s RangeSpec) UpperRecover() float64 {
	return s.Max - s.Hysteresis
}

// LowerRecover is the exclusive lower edge of the inner band.
func (s RangeSpec) LowerRecover() float64 {
	return s.Min + s.Hysteresis
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
