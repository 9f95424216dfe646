// Package kafka consumes the monitored topics from a Kafka consumer group.
//
// Messages are fetched, handled and committed one at a time, so the handler
// sees every partition in order and an offset is committed only after the
// reading was evaluated.
package kafka
