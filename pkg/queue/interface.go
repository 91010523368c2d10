package queue

import (
	"github.com/sablewing/pocketbook/pkg/domain"
)

// Queue is a durable, ordered log of mutations awaiting replay. Append-only
// FIFO: entries are never reordered or coalesced, and are removed only by
// Clear once a whole drain has succeeded.
type Queue interface {
	// Enqueue appends an action. Updates and deletes that target a
	// client-local placeholder id are dropped with a logged warning, the
	// server must never be asked to mutate a record it has not confirmed.
	Enqueue(a domain.QueuedAction) error

	// Drain returns the pending actions in insertion order without
	// mutating the queue. Callers replay the snapshot and Ack its length
	// on full success.
	Drain() []domain.QueuedAction

	// Ack drops the first n actions: the fully replayed snapshot. Actions
	// enqueued after the snapshot was taken stay put for the next drain.
	Ack(n int) error

	Clear() error
	Len() int
}
