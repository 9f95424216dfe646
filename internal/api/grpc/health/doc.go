// Package health exposes the per-topic status through the standard gRPC
// health checking protocol.
//
// Every monitored topic is a service name: SERVING while the topic is normal,
// NOT_SERVING while it is out of range. The empty service name reports the
// health of the process itself.
package health
