// Package monitor serves the progress of a batch run to websocket clients.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Event kinds.
const (
	KindCommand  = "command"
	KindProgress = "progress"
	KindResult   = "result"
)

const (
	eventBuffer  = 1024
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// Event is one piece of batch activity.
type Event struct {
	Kind     string    `json:"kind"`
	Command  string    `json:"command,omitempty"`
	Position string    `json:"position,omitempty"`
	Games    int       `json:"games,omitempty"`
	Total    int       `json:"total,omitempty"`
	Probs    []float64 `json:"probs,omitempty"`
	Equity   float64   `json:"equity"`
	Line     string    `json:"line,omitempty"`
}

// Stats summarizes the results seen so far.
type Stats struct {
	Results    int     `json:"results"`
	MeanEquity float64 `json:"meanEquity"`
	StdDev     float64 `json:"stdDev"`
	Dropped    int64   `json:"dropped"`
	Clients    int     `json:"clients"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Monitor fans events out to websocket clients. Publish never blocks.
type Monitor struct {
	addr   string
	log    zerolog.Logger
	events chan Event

	dropped atomic.Int64

	mu       sync.Mutex
	clients  map[*client]struct{}
	equities []float64
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// New returns a monitor that will listen on addr once Run is called.
func New(addr string, log zerolog.Logger) *Monitor {
	return &Monitor{
		addr:    addr,
		log:     log.With().Str("component", "monitor").Logger(),
		events:  make(chan Event, eventBuffer),
		clients: make(map[*client]struct{}),
	}
}

// Publish queues ev, dropping it when the queue is full.
func (m *Monitor) Publish(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.dropped.Add(1)
	}
}

// Handler routes /ws to the event stream and /stats to a JSON summary.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.serveWS)
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(m.Stats()); err != nil {
			m.log.Debug().Err(err).Msg("stats write")
		}
	})
	return mux
}

// Run serves until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return err
	}
	return m.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (m *Monitor) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second}
	m.log.Info().Str("addr", ln.Addr().String()).Msg("monitor listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.closeClients()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		m.Dispatch(ctx)
		return nil
	})
	return g.Wait()
}

// Dispatch delivers queued events until ctx is done.
func (m *Monitor) Dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			m.broadcast(ev)
		}
	}
}

func (m *Monitor) broadcast(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.Kind == KindResult {
		m.equities = append(m.equities, ev.Equity)
	}
	for c := range m.clients {
		select {
		case c.send <- ev:
		default:
			m.dropped.Add(1)
		}
	}
}

// Stats returns the current summary.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Results: len(m.equities), Dropped: m.dropped.Load(), Clients: len(m.clients)}
	switch len(m.equities) {
	case 0:
	case 1:
		s.MeanEquity = m.equities[0]
	default:
		s.MeanEquity, s.StdDev = stat.MeanStdDev(m.equities, nil)
	}
	return s
}

// Clients is the number of connected clients.
func (m *Monitor) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *Monitor) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan Event, clientBuffer)}
	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	m.log.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	go m.writePump(c)
	m.readPump(c)
}

func (m *Monitor) writePump(c *client) {
	defer c.conn.Close()
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readPump discards client messages and unregisters on close.
func (m *Monitor) readPump(c *client) {
	defer m.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Monitor) remove(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c]; ok {
		delete(m.clients, c)
		close(c.send)
	}
}

func (m *Monitor) closeClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		delete(m.clients, c)
		close(c.send)
	}
}
