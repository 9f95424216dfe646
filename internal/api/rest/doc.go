// Package rest implements the read-only status API of the monitor with gin:
// liveness, the status of every topic and the Prometheus metrics.
package rest
