package ledger

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/sablewing/pocketbook/pkg/api"
	"github.com/sablewing/pocketbook/pkg/archive"
	"github.com/sablewing/pocketbook/pkg/domain"
	"github.com/sablewing/pocketbook/pkg/queue"
	"github.com/sablewing/pocketbook/pkg/syncer"
)

const defaultPageSize = 5

// Ledger mediates user intent against the remote service, the pending
// queue and the sync engine, and holds the one view model display code
// reads. Reachable mutations go straight to the server followed by a
// refetch; unreachable (or mid-drain) mutations are queued.
//
// All state is guarded by one mutex; network calls never run under it.
type Ledger struct {
	mu     sync.Mutex
	remote api.API
	queue  queue.Queue
	engine *syncer.Engine
	sink   archive.Sink

	pageSize   int
	page       int
	category   string
	userFilter int64

	transactions []*domain.Transaction
	total        int
	stats        *domain.Stats
	users        []domain.User

	// unsynced optimistic records for queued adds, shown until a drain
	// confirms them
	offline []*domain.Transaction

	reachable bool
	draining  bool
	status    string
}

// Options tune a Ledger. The zero value is usable.
type Options struct {
	PageSize int
	Archive  archive.Sink // optional post-refresh snapshot sink
}

func New(remote api.API, q queue.Queue, opts Options) *Ledger {
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	l := &Ledger{
		remote:   remote,
		queue:    q,
		sink:     opts.Archive,
		pageSize: size,
		page:     1,
	}
	l.engine = syncer.New(q, remote, l.Refresh)
	return l
}

// View is a copy of everything display code renders.
type View struct {
	Transactions []*domain.Transaction
	Offline      []*domain.Transaction
	Total        int
	Page         int
	PageSize     int
	Stats        *domain.Stats
	Users        []domain.User
	Pending      int
	Reachable    bool
	Status       string
}

func (l *Ledger) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	return View{
		Transactions: append([]*domain.Transaction{}, l.transactions...),
		Offline:      append([]*domain.Transaction{}, l.offline...),
		Total:        l.total,
		Page:         l.page,
		PageSize:     l.pageSize,
		Stats:        l.stats,
		Users:        append([]domain.User{}, l.users...),
		Pending:      l.queue.Len(),
		Reachable:    l.reachable,
		Status:       l.status,
	}
}

// Refresh refetches the current page and the stats summary and replaces the
// view wholesale. It is the single "invalidate and refetch" path shared by
// every trigger: a finished drain, a push notification, the periodic
// refresh tick and direct user actions.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	q := api.ListQuery{
		Category: l.category,
		Page:     l.page,
		Limit:    l.pageSize,
		UserID:   l.userFilter,
	}
	l.mu.Unlock()

	page, err := l.remote.List(ctx, q)
	if err != nil {
		log.Printf("refresh: listing failed: %v\n", err)
		return err
	}
	stats, err := l.remote.Stats(ctx)
	if err != nil {
		log.Printf("refresh: stats failed: %v\n", err)
		return err
	}

	// newest first
	sort.SliceStable(page.Data, func(i, j int) bool {
		a, _ := page.Data[i].ID.Remote()
		b, _ := page.Data[j].ID.Remote()
		return a > b
	})

	l.mu.Lock()
	l.transactions = page.Data
	l.total = page.Total
	l.stats = stats
	if l.queue.Len() == 0 {
		// nothing pending anymore, the server view covers everything
		l.offline = nil
	}
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		if err := sink.Write(page.Data); err != nil {
			log.Printf("archive write failed: %v\n", err)
		}
	}
	return nil
}

// LoadUsers fetches the user list, typically once at startup.
func (l *Ledger) LoadUsers(ctx context.Context) error {
	users, err := l.remote.Users(ctx)
	if err != nil {
		log.Printf("failed to load users: %v\n", err)
		return err
	}

	l.mu.Lock()
	l.users = users
	l.mu.Unlock()
	return nil
}

// SetReachable records the monitor's combined signal. The monitor only
// reports changes, so a true here is a reachability edge: the one trigger
// for draining the queue. While the drain is in flight new mutations are
// routed to the queue, never sent directly, preserving replay order.
func (l *Ledger) SetReachable(ctx context.Context, reachable bool) {
	l.mu.Lock()
	l.reachable = reachable
	if !reachable {
		l.status = "Backend unreachable. Changes will sync later."
		l.mu.Unlock()
		return
	}
	l.draining = true
	l.mu.Unlock()

	had := l.queue.Len()
	err := l.engine.SyncOnce(ctx)

	l.mu.Lock()
	l.draining = false
	switch {
	case err != nil:
		// queue is untouched, the next edge retries it
		log.Printf("sync failed: %v\n", err)
		l.status = "Sync failed, pending changes kept for retry."
	case had > 0:
		l.status = "Offline transactions synced successfully!"
	}
	l.mu.Unlock()
}

// SetPage moves pagination and refetches.
func (l *Ledger) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetCategoryFilter narrows the listing by category search term.
func (l *Ledger) SetCategoryFilter(ctx context.Context, category string) error {
	l.mu.Lock()
	l.category = category
	l.page = 1
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetUserFilter narrows the listing to one user, 0 means everyone.
func (l *Ledger) SetUserFilter(ctx context.Context, userID int64) error {
	l.mu.Lock()
	l.userFilter = userID
	l.page = 1
	l.mu.Unlock()
	return l.Refresh(ctx)
}
