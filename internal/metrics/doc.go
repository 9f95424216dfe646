// Package metrics defines the Prometheus collectors of the monitor.
package metrics
