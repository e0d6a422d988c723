package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/gaslab/internal/gas"
)

func testParams() gas.Params {
	p := gas.DefaultParams()
	p.N = 32
	p.Seed = 1
	return p
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameRate = 200
	cfg.StepsPerFrame = 1
	return cfg
}

func mustServer(t *testing.T, p gas.Params, cfg Config) *Server {
	t.Helper()
	s, err := New(p, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return frame
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := testParams()
	p.N = 0
	if _, err := New(p, DefaultConfig()); err == nil {
		t.Fatal("expected error for zero particles")
	}
}

func TestNewFillsConfigDefaults(t *testing.T) {
	s := mustServer(t, testParams(), Config{})
	if s.config.FrameRate != 30 {
		t.Errorf("frame rate = %d, want 30", s.config.FrameRate)
	}
	if s.config.StepsPerFrame != 1 {
		t.Errorf("steps per frame = %d, want 1", s.config.StepsPerFrame)
	}
	if s.config.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", s.config.Addr)
	}
}

func TestStatsBeforeFirstFrame(t *testing.T) {
	s := mustServer(t, testParams(), testConfig())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get /stats: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("expected empty snapshot, got %v", body)
	}
}

func TestStatsSnapshot(t *testing.T) {
	p := testParams()
	s := mustServer(t, p, testConfig())
	engine, err := gas.New(p)
	if err != nil {
		t.Fatalf("gas.New: %v", err)
	}
	engine.Step()
	s.broadcast(engine)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get /stats: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var frame Frame
	if err := json.NewDecoder(resp.Body).Decode(&frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Params.N != p.N {
		t.Errorf("params.N = %d, want %d", frame.Params.N, p.N)
	}
	if frame.Stats.Time <= 0 {
		t.Errorf("stats time = %v, want > 0", frame.Stats.Time)
	}
	if len(frame.Particles) != 0 {
		t.Errorf("particles included without IncludeParticles")
	}
}

func TestStatsIncludesParticlesWhenConfigured(t *testing.T) {
	p := testParams()
	cfg := testConfig()
	cfg.IncludeParticles = true
	s := mustServer(t, p, cfg)

	engine, err := gas.New(p)
	if err != nil {
		t.Fatalf("gas.New: %v", err)
	}
	s.broadcast(engine)

	data, ok := s.latest.Load().([]byte)
	if !ok {
		t.Fatal("no frame stored")
	}
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(frame.Particles) != p.N {
		t.Errorf("particles = %d, want %d", len(frame.Particles), p.N)
	}
}

func TestWebSocketStream(t *testing.T) {
	p := testParams()
	s := mustServer(t, p, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.simulate(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer conn.Close()

	frame := readFrame(t, conn)
	if frame.Params.N != p.N {
		t.Errorf("params.N = %d, want %d", frame.Params.N, p.N)
	}
	if frame.Stats.TotalEnergy <= 0 {
		t.Errorf("total energy = %v, want > 0", frame.Stats.TotalEnergy)
	}
	if len(frame.Chart.Speed) == 0 {
		t.Error("frame has no speed histogram")
	}

	next := readFrame(t, conn)
	if next.Stats.Time <= frame.Stats.Time {
		t.Errorf("time did not advance: %v then %v", frame.Stats.Time, next.Stats.Time)
	}
}

func TestWebSocketReset(t *testing.T) {
	p := testParams()
	s := mustServer(t, p, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.simulate(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer conn.Close()

	readFrame(t, conn)

	smaller := testParams()
	smaller.N = 8
	req := resetRequest{Type: "reset", Params: smaller}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write reset: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		frame := readFrame(t, conn)
		if frame.Params.N == smaller.N {
			return
		}
	}
	t.Fatal("reset never took effect")
}

func TestWebSocketInvalidResetIgnored(t *testing.T) {
	p := testParams()
	s := mustServer(t, p, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.simulate(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv.URL)
	defer conn.Close()

	bad := testParams()
	bad.N = 0
	if err := conn.WriteJSON(resetRequest{Type: "reset", Params: bad}); err != nil {
		t.Fatalf("write reset: %v", err)
	}

	for i := 0; i < 5; i++ {
		frame := readFrame(t, conn)
		if frame.Params.N != p.N {
			t.Fatalf("frame %d has params.N = %d, want %d", i, frame.Params.N, p.N)
		}
	}
}

func TestBroadcastDropsWhenClientFull(t *testing.T) {
	p := testParams()
	s := mustServer(t, p, testConfig())
	engine, err := gas.New(p)
	if err != nil {
		t.Fatalf("gas.New: %v", err)
	}

	c := &client{send: make(chan []byte, 1)}
	c.send <- []byte("stale")
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.broadcast(engine)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}

	if got := len(c.send); got != 1 {
		t.Fatalf("send queue length = %d, want 1", got)
	}
	if string(<-c.send) != "stale" {
		t.Error("queued frame was replaced instead of dropped")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:0"
	s := mustServer(t, testParams(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
