package ledger

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// Create records a new transaction. Invalid input returns field errors and
// touches nothing. Reachable input goes straight to the server followed by
// a refetch; otherwise the add is queued and rendered optimistically under
// a placeholder id until a drain confirms it.
func (l *Ledger) Create(ctx context.Context, in Input) (FieldErrors, error) {
	draft, errs := in.Validate()
	if errs != nil {
		return errs, nil
	}

	if !l.direct() {
		if err := l.queue.Enqueue(domain.AddAction(draft)); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.offline = append(l.offline, draft.Confirmed(domain.NewLocalID()))
		l.status = "Transaction saved offline and will sync later."
		l.mu.Unlock()
		return nil, nil
	}

	if _, err := l.remote.Create(ctx, draft); err != nil {
		// no state change and no automatic retry, the user resubmits
		log.Printf("create failed: %v\n", err)
		return nil, err
	}

	l.mu.Lock()
	l.page = 1
	l.status = "Transaction added!"
	l.mu.Unlock()
	return nil, l.Refresh(ctx)
}

// Update rewrites an existing, server-confirmed transaction.
func (l *Ledger) Update(ctx context.Context, id domain.ID, in Input) (FieldErrors, error) {
	if !id.IsRemote() {
		return nil, fmt.Errorf("transaction %v has not been confirmed by the server yet", id)
	}

	draft, errs := in.Validate()
	if errs != nil {
		return errs, nil
	}
	txn := draft.Confirmed(id)

	if !l.direct() {
		if err := l.queue.Enqueue(domain.UpdateAction(*txn)); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.status = "Update saved offline and will sync later."
		l.mu.Unlock()
		return nil, nil
	}

	if err := l.remote.Update(ctx, *txn); err != nil {
		log.Printf("update failed: %v\n", err)
		return nil, err
	}

	l.mu.Lock()
	l.status = "Transaction updated!"
	l.mu.Unlock()
	return nil, l.Refresh(ctx)
}

// Delete removes a server-confirmed transaction.
func (l *Ledger) Delete(ctx context.Context, id domain.ID) error {
	if !id.IsRemote() {
		return fmt.Errorf("transaction %v has not been confirmed by the server yet", id)
	}

	if !l.direct() {
		if err := l.queue.Enqueue(domain.DeleteAction(id)); err != nil {
			return err
		}
		l.mu.Lock()
		l.status = "Delete action saved offline and will sync later."
		l.mu.Unlock()
		return nil
	}

	if err := l.remote.Delete(ctx, id); err != nil {
		log.Printf("delete failed: %v\n", err)
		return err
	}

	l.mu.Lock()
	l.page = 1
	l.status = "Transaction deleted!"
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// InputFor rehydrates form input from a fetched record, for the edit flow.
// Only server-confirmed rows on the current page qualify.
func (l *Ledger) InputFor(id domain.ID) (Input, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !id.IsRemote() {
		return Input{}, false
	}
	for _, t := range l.transactions {
		if t.ID == id {
			return Input{
				Type:     t.Type,
				Amount:   strconv.FormatFloat(t.Amount, 'f', -1, 64),
				Category: t.Category,
				Date:     t.Date,
				User:     strconv.FormatInt(t.UserID, 10),
			}, true
		}
	}
	return Input{}, false
}

// direct reports whether a mutation may go straight to the server: the
// backend is reachable and no drain is replaying the queue right now.
func (l *Ledger) direct() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reachable && !l.draining
}
