// Package mqtt subscribes to the monitored topics on an MQTT broker.
//
// The connection is managed by Eclipse Paho's autopaho package: it reconnects
// automatically and the topics are subscribed again on every (re)connect.
// Received publishes are handed to the handler one by one, in arrival order.
package mqtt
