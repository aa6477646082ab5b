package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.livecheck/pkg/logging"
)

// Message types sent to WebSocket clients.
const (
	MessageDashboard = "dashboard"
	MessageCase      = "case"
)

const writeWait = 5 * time.Second

// Message is one frame of the live stream. A client first gets
// a dashboard frame, then one case frame per event.
type Message struct {
	Type      string     `json:"type"`
	Dashboard *Dashboard `json:"dashboard,omitempty"`
	Event     *CaseEvent `json:"event,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Server streams collector events to WebSocket clients on /ws and
// serves the dashboard snapshot as JSON on /dashboard.
type Server struct {
	mu        sync.RWMutex
	collector *EventCollector
	dashboard *DashboardData
	clients   map[*wsClient]struct{}
	upgrader  websocket.Upgrader
	addr      string
	server    *http.Server
	listener  net.Listener
	routes    map[string]http.Handler
	logger    logging.Logger
}

// NewServer creates a monitor server. Events emitted on collector
// are broadcast from now on, whether or not the server is
// listening. The server only reads dashboard; whoever owns it
// keeps it updated.
func NewServer(
	addr string,
	collector *EventCollector,
	dashboard *DashboardData,
	logger logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		clients:   make(map[*wsClient]struct{}),
		routes:    make(map[string]http.Handler),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
	collector.OnEvent(func(event CaseEvent) {
		data, err := json.Marshal(Message{Type: MessageCase, Event: &event})
		if err != nil {
			return
		}
		s.broadcast(data)
	})
	return s
}

// Mount adds a route served next to the monitor endpoints. Routes
// mounted after Start are not served.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[pattern] = h
}

// Handler returns the HTTP routes of the monitor.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.mu.RLock()
	for pattern, h := range s.routes {
		mux.Handle(pattern, h)
	}
	s.mu.RUnlock()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the configured address and serves in the
// background until Stop is called or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("monitor server: %w", err)
	}

	handler := s.Handler()
	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("monitor_serve_failed", logging.ErrorField(err))
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = srv.Close()
		case <-stopped:
		}
	}()

	s.logger.Info("monitor_started",
		logging.StringField("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started, else the
// configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stop shuts the HTTP server down and disconnects every
// WebSocket client.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	for c := range s.clients {
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 32)}

	snap := s.dashboard.Snapshot()
	initial, err := json.Marshal(Message{Type: MessageDashboard, Dashboard: &snap})
	if err != nil {
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	// The reader only detects the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.write(conn, initial); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			if err := s.write(conn, data); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.dashboard.Snapshot())
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}
