package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// backend is an in-memory stand-in for the transaction service. Flip down
// to simulate the process dying while the network stays up.
type backend struct {
	mu     sync.Mutex
	srv    *httptest.Server
	txns   map[int64]*domain.Transaction
	nextID int64

	down      bool
	creates   int
	updates   int
	deletes   int
	lastQuery url.Values

	// when set, PUT handlers block on it, holding a drain open
	updateGate chan struct{}
	updateSeen chan struct{}
}

func newBackend() *backend {
	b := &backend{txns: map[int64]*domain.Transaction{}, nextID: 1}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

func (b *backend) Close() { b.srv.Close() }

func (b *backend) URL() string { return b.srv.URL }

func (b *backend) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *backend) Seed(t domain.Transaction) domain.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	t.ID = domain.RemoteID(id)
	b.txns[id] = &t
	return t.ID
}

func (b *backend) Has(id domain.ID) bool {
	n, ok := id.Remote()
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok = b.txns[n]
	return ok
}

func (b *backend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	if b.down {
		b.mu.Unlock()
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}
	b.mu.Unlock()

	switch {
	case r.URL.Path == "/ping":
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/api/users":
		json.NewEncoder(w).Encode([]domain.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bo"}})
	case r.URL.Path == "/api/transactions/stats":
		b.stats(w)
	case r.URL.Path == "/api/transactions" && r.Method == "GET":
		b.list(w, r)
	case r.URL.Path == "/api/transactions" && r.Method == "POST":
		b.create(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/transactions/") && r.Method == "PUT":
		b.update(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/transactions/") && r.Method == "DELETE":
		b.delete(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) all() []*domain.Transaction {
	out := []*domain.Transaction{}
	for _, t := range b.txns {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i].ID.Remote()
		c, _ := out[j].ID.Remote()
		return a < c
	})
	return out
}

func (b *backend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := r.URL.Query()
	b.lastQuery = q

	matches := []*domain.Transaction{}
	for _, t := range b.all() {
		if c := q.Get("category"); c != "" && !strings.Contains(t.Category, c) {
			continue
		}
		if u := q.Get("user_id"); u != "" && strconv.FormatInt(t.UserID, 10) != u {
			continue
		}
		matches = append(matches, t)
	}

	total := len(matches)
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = len(matches)
	}
	from := (page - 1) * limit
	if from > len(matches) {
		from = len(matches)
	}
	to := from + limit
	if to > len(matches) {
		to = len(matches)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  matches[from:to],
		"total": total,
	})
}

func (b *backend) stats(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := domain.Stats{}
	var sum float64
	for _, t := range b.all() {
		sum += t.Amount
		if stats.Highest == nil || t.Amount > stats.Highest.Amount {
			stats.Highest = t
		}
		if stats.Lowest == nil || t.Amount < stats.Lowest.Amount {
			stats.Lowest = t
		}
	}
	if n := len(b.txns); n > 0 {
		avg := sum / float64(n)
		for _, t := range b.all() {
			d := t.Amount - avg
			if d < 0 {
				d = -d
			}
			if stats.ClosestToAverage == nil {
				stats.ClosestToAverage = t
				continue
			}
			best := stats.ClosestToAverage.Amount - avg
			if best < 0 {
				best = -best
			}
			if d < best {
				stats.ClosestToAverage = t
			}
		}
		stats.Average = stats.ClosestToAverage
	}
	json.NewEncoder(w).Encode(stats)
}

func (b *backend) create(w http.ResponseWriter, r *http.Request) {
	d := domain.Draft{}
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.creates++
	id := b.nextID
	b.nextID++
	t := d.Confirmed(domain.RemoteID(id))
	b.txns[id] = t
	b.mu.Unlock()

	json.NewEncoder(w).Encode(t)
}

func (b *backend) pathID(r *http.Request) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	n, err := strconv.ParseInt(raw, 10, 64)
	return n, err == nil
}

func (b *backend) update(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	gate, seen := b.updateGate, b.updateSeen
	b.mu.Unlock()
	if seen != nil {
		seen <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	id, ok := b.pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	t := domain.Transaction{}
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.txns[id]; !exists {
		http.Error(w, "no such transaction", http.StatusNotFound)
		return
	}
	b.updates++
	t.ID = domain.RemoteID(id)
	b.txns[id] = &t
	w.WriteHeader(http.StatusOK)
}

func (b *backend) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := b.pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.txns[id]; !exists {
		http.Error(w, "no such transaction", http.StatusNotFound)
		return
	}
	b.deletes++
	delete(b.txns, id)
	w.WriteHeader(http.StatusOK)
}
