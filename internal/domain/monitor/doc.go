// Package monitor contains the core domain types of the range monitor.
//
// It defines RangeSpec (the immutable per-topic bounds), Status (the two-state
// latch of a topic) and Transition (a detected change of latch), together with
// Evaluate, the pure threshold function that drives every topic.
package monitor
