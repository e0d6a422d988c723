// Package server streams a running gas simulation over websockets.
//
// One simulation goroutine owns the engine for the server's whole
// lifetime: it steps at a fixed frame rate, broadcasts JSON frames to
// every registered client, and applies reset requests by replacing the
// engine wholesale. HTTP handlers never touch the engine directly.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/gaslab/internal/gas"
)

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
)

type Config struct {
	Addr             string
	FrameRate        int
	StepsPerFrame    int
	IncludeParticles bool
}

func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		FrameRate:     30,
		StepsPerFrame: 3,
	}
}

// Frame is one broadcast snapshot.
type Frame struct {
	Params    gas.Params     `json:"params"`
	Stats     gas.Stats      `json:"stats"`
	Chart     gas.ChartData  `json:"chart"`
	Particles []gas.Particle `json:"particles,omitempty"`
}

// resetRequest is the only inbound message type: replace the engine
// with one built from the given params.
type resetRequest struct {
	Type   string     `json:"type"`
	Params gas.Params `json:"params"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Server struct {
	params gas.Params
	config Config

	mu      sync.RWMutex
	clients map[*client]struct{}

	resets chan gas.Params
	latest atomic.Value // marshaled Frame for the /stats snapshot

	upgrader websocket.Upgrader
}

func New(params gas.Params, cfg Config) (*Server, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("server params: %w", err)
	}
	if cfg.FrameRate < 1 {
		cfg.FrameRate = 30
	}
	if cfg.StepsPerFrame < 1 {
		cfg.StepsPerFrame = 1
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	return &Server{
		params:  params,
		config:  cfg,
		clients: make(map[*client]struct{}),
		resets:  make(chan gas.Params, 4),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler exposes the HTTP surface: /ws for the stream, /stats for a
// one-shot JSON snapshot of the most recent frame.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Run serves until the context is canceled, then shuts the HTTP server
// down and closes every client connection.
func (s *Server) Run(ctx context.Context) error {
	simCtx, stopSim := context.WithCancel(ctx)
	defer stopSim()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulate(simCtx)
	}()

	httpServer := &http.Server{Addr: s.config.Addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		stopSim()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)

	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	wg.Wait()
	return nil
}

// simulate is the engine's sole owner: step, broadcast, and apply
// resets, all from this goroutine.
func (s *Server) simulate(ctx context.Context) {
	engine, err := gas.New(s.params)
	if err != nil {
		log.Printf("engine init: %v", err)
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.config.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.resets:
			fresh, err := gas.New(p)
			if err != nil {
				log.Printf("reset rejected: %v", err)
				continue
			}
			engine = fresh
		case <-ticker.C:
			if engine.Phase() != gas.PhaseFinished {
				for i := 0; i < s.config.StepsPerFrame; i++ {
					engine.Step()
					engine.CollectSamples()
				}
			}
			s.broadcast(engine)
		}
	}
}

func (s *Server) broadcast(engine *gas.Engine) {
	frame := Frame{
		Params: engine.Params(),
		Stats:  engine.Stats(),
		Chart:  engine.Chart(true),
	}
	if s.config.IncludeParticles {
		frame.Particles = engine.Particles()
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("frame marshal: %v", err)
		return
	}
	s.latest.Store(data)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop the frame
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writer(c)
	s.reader(c)
}

// reader consumes inbound messages until the connection drops, then
// unregisters the client.
func (s *Server) reader(c *client) {
	defer func() {
		c.conn.Close()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.send)
	}()

	for {
		var req resetRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Type != "reset" {
			continue
		}
		select {
		case s.resets <- req.Params:
		default:
			// a reset is already pending
		}
	}
}

func (s *Server) writer(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if data, ok := s.latest.Load().([]byte); ok {
		w.Write(data)
		return
	}
	w.Write([]byte("{}"))
}
