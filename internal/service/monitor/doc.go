// Package monitor runs the range monitor: it loads the configuration, starts
// the message source with the status servers, and dispatches every received
// reading through the threshold evaluator to the notifiers.
package monitor
