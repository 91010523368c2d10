package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sablewing/pocketbook/pkg/api"
	"github.com/sablewing/pocketbook/pkg/archive"
	"github.com/sablewing/pocketbook/pkg/connectivity"
	"github.com/sablewing/pocketbook/pkg/crypto"
	"github.com/sablewing/pocketbook/pkg/domain"
	"github.com/sablewing/pocketbook/pkg/ledger"
	"github.com/sablewing/pocketbook/pkg/queue"
	"github.com/sablewing/pocketbook/pkg/realtime"
)

// client bundles the wired services a command works with.
type client struct {
	remote  *api.Client
	queue   *queue.JSONFile
	ledger  *ledger.Ledger
	monitor *connectivity.Monitor
}

func setup(g *globals) (*client, error) {
	remote, err := api.NewClient(g.API)
	if err != nil {
		return nil, err
	}

	q, err := openQueue(g)
	if err != nil {
		return nil, err
	}

	var sink archive.Sink
	if g.Archive != "" {
		sink, err = archive.Open(g.Archive)
		if err != nil {
			return nil, err
		}
	}

	led := ledger.New(remote, q, ledger.Options{Archive: sink})

	mon := connectivity.NewMonitor(remote, time.Duration(g.Heartbeat)*time.Second)
	mon.Notify(func(reachable bool) {
		led.SetReachable(context.Background(), reachable)
	})

	return &client{remote: remote, queue: q, ledger: led, monitor: mon}, nil
}

func openQueue(g *globals) (*queue.JSONFile, error) {
	if g.QueueKey == "" && g.QueueSig == "" {
		return queue.NewJSONFile(g.Queue), nil
	}

	sealer, err := crypto.NewSealer(g.QueueKey, g.QueueSig)
	if err != nil {
		return nil, err
	}
	return queue.NewSealedJSONFile(g.Queue, sealer), nil
}

// probe checks reachability once and tells the ledger, which also drains any
// backlog when the backend turns out to be up.
func (c *client) probe(ctx context.Context) bool {
	c.monitor.Probe(ctx)
	return c.monitor.Reachable()
}

func printErrs(errs ledger.FieldErrors) {
	for field, msg := range errs {
		fmt.Printf("  %s: %s\n", field, msg)
	}
}

type addCmd struct {
	Type     string `arg:"" help:"Income or Expense"`
	Amount   string `arg:"" help:"Amount, eg. 49.99"`
	Category string `arg:"" help:"Category, eg. Groceries"`
	Date     string `arg:"" help:"ISO date, eg. 2024-03-02"`
	User     string `required:"" help:"Owning user id."`
}

func (a *addCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	c.probe(ctx)

	in := ledger.Input{Type: a.Type, Amount: a.Amount, Category: a.Category, Date: a.Date, User: a.User}
	errs, err := c.ledger.Create(ctx, in)
	if err != nil {
		return err
	}
	if errs != nil {
		printErrs(errs)
		return fmt.Errorf("transaction not recorded")
	}

	fmt.Println(c.ledger.View().Status)
	return nil
}

type updateCmd struct {
	ID       int64  `arg:"" help:"Server id of the transaction."`
	Type     string `arg:"" help:"Income or Expense"`
	Amount   string `arg:"" help:"Amount, eg. 49.99"`
	Category string `arg:"" help:"Category, eg. Groceries"`
	Date     string `arg:"" help:"ISO date, eg. 2024-03-02"`
	User     string `required:"" help:"Owning user id."`
}

func (u *updateCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	c.probe(ctx)

	in := ledger.Input{Type: u.Type, Amount: u.Amount, Category: u.Category, Date: u.Date, User: u.User}
	errs, err := c.ledger.Update(ctx, domain.RemoteID(u.ID), in)
	if err != nil {
		return err
	}
	if errs != nil {
		printErrs(errs)
		return fmt.Errorf("transaction not updated")
	}

	fmt.Println(c.ledger.View().Status)
	return nil
}

type deleteCmd struct {
	ID int64 `arg:"" help:"Server id of the transaction."`
}

func (d *deleteCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	c.probe(ctx)

	if err := c.ledger.Delete(ctx, domain.RemoteID(d.ID)); err != nil {
		return err
	}
	fmt.Println(c.ledger.View().Status)
	return nil
}

type listCmd struct {
	Page     int    `default:"1" help:"Page to show."`
	Category string `help:"Filter by category search term."`
	User     int64  `help:"Filter by user id, 0 for everyone."`
}

func (l *listCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if !c.probe(ctx) {
		return fmt.Errorf("backend unreachable, %d queued actions waiting to sync", c.queue.Len())
	}

	if err := c.ledger.SetCategoryFilter(ctx, l.Category); err != nil {
		return err
	}
	if err := c.ledger.SetUserFilter(ctx, l.User); err != nil {
		return err
	}
	if err := c.ledger.SetPage(ctx, l.Page); err != nil {
		return err
	}

	printView(c.ledger.View())
	return nil
}

func printView(v ledger.View) {
	for _, t := range v.Transactions {
		fmt.Printf("%6s  %-7s  %10.2f  %-16s  %s  user:%d\n", t.ID, t.Type, t.Amount, t.Category, t.Date, t.UserID)
	}
	for _, t := range v.Offline {
		fmt.Printf("%6s  %-7s  %10.2f  %-16s  %s  user:%d  (not yet synced)\n", "-", t.Type, t.Amount, t.Category, t.Date, t.UserID)
	}
	fmt.Printf("page %d, %d total", v.Page, v.Total)
	if v.Pending > 0 {
		fmt.Printf(", %d pending sync", v.Pending)
	}
	fmt.Println()
}

type statsCmd struct{}

func (s *statsCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if !c.probe(ctx) {
		return fmt.Errorf("backend unreachable")
	}
	if err := c.ledger.Refresh(ctx); err != nil {
		return err
	}

	v := c.ledger.View()
	if v.Stats == nil {
		return fmt.Errorf("no stats fetched")
	}
	printStat("highest", v.Stats.Highest)
	printStat("lowest", v.Stats.Lowest)
	printStat("average", v.Stats.Average)
	printStat("closest to average", v.Stats.ClosestToAverage)
	return nil
}

func printStat(label string, t *domain.Transaction) {
	if t == nil {
		fmt.Printf("%-20s -\n", label)
		return
	}
	fmt.Printf("%-20s %s %.2f (%s, %s)\n", label, t.Type, t.Amount, t.Category, t.Date)
}

type pendingCmd struct{}

func (p *pendingCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}

	pending := c.queue.Drain()
	if len(pending) == 0 {
		fmt.Println("offline queue is empty")
		return nil
	}

	for i, a := range pending {
		switch a.Kind {
		case domain.ActionAdd:
			fmt.Printf("%d. ADD %s %.2f %s %s\n", i+1, a.Add.Type, a.Add.Amount, a.Add.Category, a.Add.Date)
		case domain.ActionUpdate:
			fmt.Printf("%d. UPDATE %s -> %s %.2f %s %s\n", i+1, a.Update.ID, a.Update.Type, a.Update.Amount, a.Update.Category, a.Update.Date)
		case domain.ActionDelete:
			fmt.Printf("%d. DELETE %s\n", i+1, a.Delete)
		}
	}
	return nil
}

type syncCmd struct{}

func (s *syncCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx := context.Background()

	had := c.queue.Len()
	if had == 0 {
		fmt.Println("offline queue is empty")
		return nil
	}

	// the reachability edge inside probe performs the drain
	if !c.probe(ctx) {
		return fmt.Errorf("backend unreachable, %d queued actions kept", had)
	}
	if left := c.queue.Len(); left > 0 {
		return fmt.Errorf("sync incomplete, %d of %d actions kept for retry", left, had)
	}

	fmt.Println(c.ledger.View().Status)
	return nil
}

type watchCmd struct {
	Refresh int `default:"30" help:"Seconds between periodic refreshes of list and stats."`
}

func (w *watchCmd) Run(g *globals) error {
	c, err := setup(g)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.ledger.LoadUsers(ctx)

	// heartbeat loop, reachability edges drain the queue
	c.monitor.Start(ctx)
	defer c.monitor.Stop()

	// push channel, any server-side change triggers the shared refetch
	wsURL, err := realtime.URLFor(g.API)
	if err != nil {
		return err
	}
	ch := realtime.New(wsURL, func() {
		c.ledger.Refresh(ctx)
	})
	ch.Start()
	defer ch.Stop()

	// periodic refresh keeps charts warm even without push traffic
	ticker := time.NewTicker(time.Duration(w.Refresh) * time.Second)
	defer ticker.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	fmt.Println("watching", g.API, "- ctrl-c to stop")
	for {
		select {
		case <-ticker.C:
			if c.monitor.Reachable() {
				c.ledger.Refresh(ctx)
			}
		case <-stop:
			return nil
		}
	}
}
