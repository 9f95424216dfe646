// Package notifier delivers monitor notifications to external destinations:
// a Telegram chat, HTTP webhooks and, when nothing else is configured, the log.
//
// All destinations implement Notifier; Fanout delivers one notification to
// several of them and reports every failure.
package notifier
