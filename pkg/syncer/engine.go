package syncer

import (
	"context"
	"fmt"
	"log"

	"github.com/sablewing/pocketbook/pkg/domain"
	"github.com/sablewing/pocketbook/pkg/queue"
)

// Remote is the slice of the transaction API a drain needs.
type Remote interface {
	Create(ctx context.Context, d domain.Draft) (*domain.Transaction, error)
	Update(ctx context.Context, t domain.Transaction) error
	Delete(ctx context.Context, id domain.ID) error
}

// Engine replays the pending queue against the remote service. It holds no
// timers of its own: SyncOnce runs only when a caller observes a
// reachability edge (or wants a drain at startup).
type Engine struct {
	queue   queue.Queue
	remote  Remote
	refresh func(ctx context.Context) error
}

// New builds an engine. refresh is invoked after a fully successful drain so
// the view reflects server-confirmed state; it may be nil.
func New(q queue.Queue, remote Remote, refresh func(ctx context.Context) error) *Engine {
	return &Engine{queue: q, remote: remote, refresh: refresh}
}

// SyncOnce drains the whole queue or none of it. Actions replay strictly in
// insertion order; the first failure stops the drain and leaves the stored
// queue exactly as it was, to be retried on the next reachability edge.
// Replay is at-least-once: an action the server already applied may be sent
// again after a partial failure.
func (e *Engine) SyncOnce(ctx context.Context) error {
	pending := e.queue.Drain()
	if len(pending) == 0 {
		return nil
	}
	log.Printf("syncing %d pending actions\n", len(pending))

	for i, a := range pending {
		if err := e.replay(ctx, a); err != nil {
			return fmt.Errorf("sync stopped at action %d of %d (%s): %v", i+1, len(pending), a.Kind, err)
		}
	}

	// every replay landed, now drop the whole snapshot in one go. Anything
	// queued while the drain was in flight stays for the next edge.
	if err := e.queue.Ack(len(pending)); err != nil {
		return err
	}
	log.Printf("offline queue synced\n")

	if e.refresh == nil {
		return nil
	}
	return e.refresh(ctx)
}

func (e *Engine) replay(ctx context.Context, a domain.QueuedAction) error {
	switch a.Kind {
	case domain.ActionAdd:
		_, err := e.remote.Create(ctx, *a.Add)
		return err
	case domain.ActionUpdate:
		return e.remote.Update(ctx, *a.Update)
	case domain.ActionDelete:
		return e.remote.Delete(ctx, *a.Delete)
	}
	return fmt.Errorf("unknown action kind %q", a.Kind)
}
