package realtime

import (
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// Channel holds one long-lived websocket subscription to the backend. Any
// frame received means "data changed somewhere" and fires notify; the
// payload is ignored. The channel is a latency optimisation only: if it is
// down, reachability-edge syncs and user-triggered fetches still keep the
// view correct, so every failure here is logged and retried, never fatal.
type Channel struct {
	url    string
	notify func()

	stop     chan struct{}
	stopOnce sync.Once
}

func New(wsURL string, notify func()) *Channel {
	return &Channel{
		url:    wsURL,
		notify: notify,
		stop:   make(chan struct{}),
	}
}

// URLFor turns the API base URL into the matching push endpoint,
// eg. http://host:4000 -> ws://host:4000/ws.
func URLFor(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("cannot derive websocket url from scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// Start begins dialing in the background. Reconnects follow an exponential
// backoff that resets on every successful connection.
func (c *Channel) Start() {
	go c.run()
}

func (c *Channel) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Channel) run() {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0 // retry for as long as the channel lives

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			log.Printf("push channel dial failed: %v\n", err)
			select {
			case <-time.After(policy.NextBackOff()):
				continue
			case <-c.stop:
				return
			}
		}

		policy.Reset()
		log.Printf("push channel connected to %s\n", c.url)
		c.listen(conn)
	}
}

// listen pumps frames until the connection dies or the channel is stopped.
func (c *Channel) listen(conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-c.stop:
			conn.Close() // unblocks the read below
		case <-done:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			select {
			case <-c.stop:
			default:
				log.Printf("push channel dropped: %v\n", err)
			}
			return
		}
		c.notify()
	}
}
