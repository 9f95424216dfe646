// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - an optional rotating JSON log file (lumberjack) teed with the console,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and the leveled helpers used by the services (Infof, ErrorKV, ...).
//
// Services accept a context and extract the logger from it, so every log line
// of the dispatch loop carries the component name and topic fields.
package logger
