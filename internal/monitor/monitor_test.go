package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDropsWhenFull(t *testing.T) {
	m := New("127.0.0.1:0", zerolog.Nop())
	for i := 0; i < eventBuffer+10; i++ {
		m.Publish(Event{Kind: KindProgress, Games: i})
	}
	assert.Equal(t, int64(10), m.Stats().Dropped)
}

func TestStats(t *testing.T) {
	m := New("127.0.0.1:0", zerolog.Nop())
	assert.Equal(t, Stats{}, m.Stats())

	m.broadcast(Event{Kind: KindResult, Equity: 0.5})
	assert.InDelta(t, 0.5, m.Stats().MeanEquity, 1e-12)
	assert.Zero(t, m.Stats().StdDev)

	m.broadcast(Event{Kind: KindProgress, Equity: 9})
	m.broadcast(Event{Kind: KindResult, Equity: -0.5})
	s := m.Stats()
	assert.Equal(t, 2, s.Results)
	assert.InDelta(t, 0, s.MeanEquity, 1e-12)
	assert.InDelta(t, 0.7071, s.StdDev, 1e-4)
}

func TestWebSocketReceivesEvents(t *testing.T) {
	m := New("127.0.0.1:0", zerolog.Nop())
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Dispatch(ctx)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	m.Publish(Event{Kind: KindCommand, Command: "m", Position: "AAAA"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, KindCommand, ev.Kind)
	assert.Equal(t, "m", ev.Command)
	assert.Equal(t, "AAAA", ev.Position)
}

func TestStatsEndpoint(t *testing.T) {
	m := New("127.0.0.1:0", zerolog.Nop())
	m.broadcast(Event{Kind: KindResult, Equity: 0.25})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var s Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, 1, s.Results)
	assert.InDelta(t, 0.25, s.MeanEquity, 1e-12)
}

func TestRunStopsOnCancel(t *testing.T) {
	m := New("127.0.0.1:0", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
