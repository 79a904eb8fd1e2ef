package status

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server broadcasts snapshots to websocket clients and answers a plain
// health probe. It implements Sink, but Render only records and enqueues:
// the network writes happen on the server's own goroutine, so a client
// that stops reading can never stall the caller.
type Server struct {
	mu     sync.RWMutex // guards latest
	latest Snapshot

	cmu     sync.Mutex // guards clients
	clients map[*websocket.Conn]bool

	queue   chan Snapshot
	session string
	started time.Time
}

func NewServer() *Server {
	s := &Server{
		clients: map[*websocket.Conn]bool{},
		queue:   make(chan Snapshot, 8),
		session: uuid.NewString(),
		started: time.Now(),
	}
	go s.broadcast()
	return s
}

// Session is the boot-unique identifier reported by /health.
func (s *Server) Session() string { return s.session }

// Render stores the snapshot and hands it to the broadcast goroutine. When
// the queue is full the snapshot is dropped; the next refresh supersedes it
// anyway.
func (s *Server) Render(snap Snapshot) error {
	snap.Session = s.session
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	select {
	case s.queue <- snap:
	default:
	}
	return nil
}

func (s *Server) broadcast() {
	for snap := range s.queue {
		payload, err := json.Marshal(snap)
		if err != nil {
			continue
		}
		s.cmu.Lock()
		for conn := range s.clients {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				delete(s.clients, conn)
				conn.Close()
			}
		}
		s.cmu.Unlock()
	}
}

func (s *Server) HandleStateWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.cmu.Lock()
	s.clients[conn] = true
	s.cmu.Unlock()

	go func() {
		defer func() {
			s.cmu.Lock()
			delete(s.clients, conn)
			s.cmu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.latest
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.cmu.Lock()
	clients := len(s.clients)
	s.cmu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":       true,
		"session":  s.session,
		"uptime_s": int(time.Since(s.started).Seconds()),
		"ws_count": clients,
	})
}

// Serve wires the handlers into a mux and runs an HTTP server. Intended to
// run on its own goroutine; it logs and returns on listener failure rather
// than halting the receiver, since the readout is auxiliary.
func (s *Server) Serve(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleStateWS)
	mux.HandleFunc("/state", s.HandleState)
	mux.HandleFunc("/health", s.HandleHealth)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("status server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("status server stopped")
	}
}
