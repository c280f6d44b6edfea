package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banterhq/banter/pkg/protocol"
)

// Reply for connections arriving over capacity
const serverFullText = "Server is full. Try again later."

// ServerConfig holds runtime server configuration
type ServerConfig struct {
	TCPPort    int
	HTTPPort   int // metrics + WebSocket transport, 0 disables
	MaxClients int
}

// DefaultConfig returns default server configuration
func DefaultConfig() ServerConfig {
	return ServerConfig{
		TCPPort:    12345,
		HTTPPort:   0,
		MaxClients: 10,
	}
}

// Server accepts connections and runs one session state machine per client
type Server struct {
	config   ServerConfig
	registry *Registry
	metrics  *Metrics
	listener net.Listener
	httpSrv  *http.Server
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server. metrics may be nil.
func NewServer(config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		config:   config,
		registry: NewRegistry(metrics),
		metrics:  metrics,
		shutdown: make(chan struct{}),
	}
}

// EnableDebugLogging turns on verbose per-message logging
func (s *Server) EnableDebugLogging() {
	EnableDebugLogging()
}

// Addr returns the address the TCP listener is bound to
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the TCP listener and begins accepting connections. When the
// preferred port is taken it falls back to an ephemeral port; only a failure
// to bind at all is fatal.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.TCPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		errorLog.Printf("port %d unavailable (%v), falling back to an ephemeral port", s.config.TCPPort, err)
		listener, err = net.Listen("tcp", ":0")
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	}
	s.listener = listener

	if s.config.HTTPPort > 0 {
		s.startHTTP()
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// startHTTP serves Prometheus metrics and the WebSocket transport
func (s *Server) startHTTP() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.HandleWebSocket)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler: mux,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorLog.Printf("http server error: %v", err)
		}
	}()
}

// Stop shuts the server down and closes all sessions
func (s *Server) Stop() error {
	close(s.shutdown)

	if s.listener != nil {
		s.listener.Close()
	}
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}

	s.wg.Wait()
	s.registry.CloseAll()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				errorLog.Printf("accept error: %v", err)
				continue
			}
		}

		// Session goroutines are not tracked by the WaitGroup; Stop
		// unblocks them by closing their connections via the registry.
		go s.handleConnection(conn)
	}
}

// handleConnection runs the session state machine for one client: the login
// phase until a username is set, then the in-room message loop until the
// session disconnects itself or the stream fails.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	sess := NewSession(conn)
	if !s.registry.TryAdd(sess, s.config.MaxClients) {
		debugLog.Printf("rejecting connection from %s: at capacity (%d)", conn.RemoteAddr(), s.config.MaxClients)
		resp := &protocol.ConnectResponse{Success: false, Message: serverFullText}
		if err := protocol.Encode(conn, resp); err != nil {
			debugLog.Printf("capacity reply to %s failed: %v", conn.RemoteAddr(), err)
		}
		return
	}
	defer s.registry.Remove(sess.ID)

	debugLog.Printf("new connection from %s (session %s)", conn.RemoteAddr(), sess.ID)

	for sess.Username() == "" {
		msg, err := s.receive(sess)
		if err != nil {
			s.logDisconnect(sess, err)
			return
		}
		if err := s.handleLogin(sess, msg); err != nil {
			s.logDisconnect(sess, err)
			return
		}
	}

	sess.EnterRoom()

	for sess.InRoom() {
		msg, err := s.receive(sess)
		if err != nil {
			s.logDisconnect(sess, err)
			return
		}
		if err := s.handleMessage(sess, msg); err != nil {
			s.logDisconnect(sess, err)
			return
		}
	}

	debugLog.Printf("session %s (%s) disconnected", sess.ID, sess.Username())
}

// receive decodes one message from the session's stream
func (s *Server) receive(sess *Session) (protocol.Message, error) {
	msg, err := protocol.Decode(sess.Conn)
	if err != nil {
		return nil, err
	}

	debugLog.Printf("session %s: recv %s", sess.ID, msg.Type())
	if s.metrics != nil {
		s.metrics.RecordMessageReceived(msg.Type().String())
	}
	return msg, nil
}

// logDisconnect records why a session left. Clean EOF is a normal hangup.
func (s *Server) logDisconnect(sess *Session, err error) {
	switch {
	case errors.Is(err, io.EOF):
		debugLog.Printf("session %s: peer closed the connection", sess.ID)
	case errors.Is(err, protocol.ErrMalformedMessage), errors.Is(err, protocol.ErrTruncatedStream):
		errorLog.Printf("session %s: protocol error, closing: %v", sess.ID, err)
	default:
		errorLog.Printf("session %s: connection error: %v", sess.ID, err)
	}
}
