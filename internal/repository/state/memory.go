package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
)

// Repository defines the operations on the per-topic status.
type Repository interface {
	GetOrInit(topic string) domain.Status
	Set(topic string, status domain.Status)
	Update(topic string, fn func(current domain.Status) domain.Status) (previous, next domain.Status)
	Snapshot() []Entry
}

// Entry is a point-in-time copy of one topic's status.
type Entry struct {
	Topic  string
	Status domain.Status
}

// topicEntry is the store-owned status of a single topic.
type topicEntry struct {
	// mu serializes the read-modify-write sequence for this topic.
	mu     sync.Mutex
	status domain.Status
}

// MemoryRepository keeps topic statuses in memory for the process lifetime.
type MemoryRepository struct {
	// mu guards the entries map itself, not the entries.
	mu      sync.RWMutex
	entries map[string]*topicEntry
}

// ErrDuplicateTopic is returned when the same topic is registered twice.
var ErrDuplicateTopic = errors.New("duplicate topic")

// NewMemoryRepository creates a store with a Normal entry for every topic.
func NewMemoryRepository(topics []string) (*MemoryRepository, error) {
	r := &MemoryRepository{
		entries: make(map[string]*topicEntry, len(topics)),
	}

	for _, topic := range topics {
		if _, ok := r.entries[topic]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTopic, topic)
		}

		r.entries[topic] = &topicEntry{status: domain.StatusNormal}
	}

	return r, nil
}

// GetOrInit returns the topic status, creating a Normal entry on first access.
func (r *MemoryRepository) GetOrInit(topic string) domain.Status {
	e := r.entry(topic)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

// Set overwrites the topic status.
func (r *MemoryRepository) Set(topic string, status domain.Status) {
	e := r.entry(topic)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = status
}

// Update runs fn with the current status under the topic lock and stores its result.
// fn must not block: it is the evaluation step, not the notification.
func (r *MemoryRepository) Update(topic string, fn func(current domain.Status) domain.Status) (previous, next domain.Status) {
	e := r.entry(topic)

	e.mu.Lock()
	defer e.mu.Unlock()

	previous = e.status
	e.status = fn(previous)

	return previous, e.status
}

// Snapshot returns a copy of all entries sorted by topic.
func (r *MemoryRepository) Snapshot() []Entry {
	r.mu.RLock()

	entries := make(map[string]*topicEntry, len(r.entries))
	for topic, e := range r.entries {
		entries[topic] = e
	}

	r.mu.RUnlock()

	result := make([]Entry, 0, len(entries))

	for topic, e := range entries {
		e.mu.Lock()
		result = append(result, Entry{Topic: topic, Status: e.status})
		e.mu.Unlock()
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Topic < result[j].Topic
	})

	return result
}

// entry returns the topic entry, creating it when missing.
func (r *MemoryRepository) entry(topic string) *topicEntry {
	r.mu.RLock()
	e, ok := r.entries[topic]
	r.mu.RUnlock()

	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok = r.entries[topic]; ok {
		return e
	}

	e = &topicEntry{status: domain.StatusNormal}
	r.entries[topic] = e

	return e
}
