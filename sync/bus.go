// Package sync keeps concurrent clients consistent: an in-memory cache of
// the logical tables, optimistic commands with compensating rollback, a
// change-stream watcher feeding a typed per-table event bus, and a
// websocket hub relaying table events to clients.
package sync

import (
	"sync"
)

const (
	EventInsert  = "insert"
	EventUpdate  = "update"
	EventDelete  = "delete"
	EventReplace = "replace" // full table refresh
	EventError   = "error"   // failed authoritative write, after rollback
)

// Event is one change on a logical table. Row carries the full document for
// insert/update, the removed id for delete, and nil for replace.
type Event struct {
	Table string      `json:"table"`
	Type  string      `json:"type"`
	Row   interface{} `json:"row,omitempty"`
}

type subscriber struct {
	table string // empty subscribes to every table
	ch    chan Event
}

// Bus fans events out per table. Slow subscribers drop events instead of
// blocking publishers; droppers recover via a manual Refresh.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel of events for one table (empty table means
// all) and a cancel function.
func (b *Bus) Subscribe(table string) (<-chan Event, func()) {
	sub := &subscriber{table: table, ch: make(chan Event, 64)}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				close(sub.ch)
				return
			}
		}
	}
	return sub.ch, cancel
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.table != "" && sub.table != event.Table {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Subscriber is not draining; drop rather than stall the feed.
		}
	}
}
