// Package state implements the in-memory topic state store.
//
// The MemoryRepository owns one status entry per monitored topic, each guarded
// by its own mutex, and exposes a Repository interface that the monitor service
// depends on. Nothing is persisted: a restart resets every topic to Normal.
package state
