package wire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/andy-wagner/gecco/types"
)

// Handler serves module requests on the server side. types.Module
// satisfies it; tests use small inline handlers.
type Handler interface {
	// HandleRequest handles one single-line request and returns the
	// single-line response payload. It must be a pure function of the
	// message and safe for concurrent calls.
	HandleRequest(msg string) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(msg string) (string, error)

// HandleRequest calls f(msg).
func (f HandlerFunc) HandleRequest(msg string) (string, error) {
	return f(msg)
}

// Server is a network listener serving one module over the line protocol.
//
// Connections are accepted without bound and handled independently: each
// connection reads newline-terminated requests in a loop until the peer
// closes it or a read fails, so a client may send zero, one, or many
// requests per connection. A handler error or a malformed payload fails
// only that connection, never the server or its other connections.
//
// The server answers LoadQuery requests itself with the number of
// requests currently inside the handler; this is the load scalar the
// balancer ranks endpoints by.
type Server struct {
	addr    string
	handler Handler
	logger  types.Logger

	// inflight counts requests currently being handled.
	inflight atomic.Int64

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	started  bool
	stopped  bool
	wg       sync.WaitGroup
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(logger types.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a server for addr ("host:port"; use port 0 to let the
// kernel pick one, then read it back with Addr).
func NewServer(addr string, handler Handler, opts ...ServerOption) *Server {
	s := &Server{
		addr:    addr,
		handler: handler,
		logger:  nopLogger{},
		conns:   make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start binds the listener and begins accepting connections in a
// background goroutine.
//
// Returns:
//   - error: Bind failure, ErrServerAlreadyStarted, or ErrServerStopped
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrServerStopped
	}
	if s.started {
		return ErrServerAlreadyStarted
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.listener = listener
	s.started = true

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("module server listening", "addr", listener.Addr().String())

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Load returns the number of requests currently inside the handler.
func (s *Server) Load() int64 {
	return s.inflight.Load()
}

// Stop closes the listener and all open connections, then waits for the
// connection goroutines to finish. Safe to call multiple times.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	listener := s.listener
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}
	s.wg.Wait()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)

			continue
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			_ = conn.Close()

			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConn(conn)
	}
}

// handleConn serves one connection until the peer closes it, a read
// fails, or a protocol violation occurs.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	peer := conn.RemoteAddr().String()
	s.logger.Debug("connection opened", "peer", peer)
	defer s.logger.Debug("connection closed", "peer", peer)

	reader := bufio.NewReaderSize(conn, 64<<10)

	for {
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("read failed", "peer", peer, "error", err)
			}

			return
		}

		resp, err := s.serve(line)
		if err != nil {
			// Connection-level failure: the peer sees EOF for this round
			// trip and reconnects. Other connections are unaffected.
			s.logger.Warn("request failed", "peer", peer, "error", err)

			return
		}

		if _, err := conn.Write(append([]byte(resp), '\n')); err != nil {
			s.logger.Debug("write failed", "peer", peer, "error", err)

			return
		}
	}
}

// serve dispatches one request line, answering load queries itself.
func (s *Server) serve(msg string) (string, error) {
	if msg == LoadQuery {
		return strconv.FormatInt(s.inflight.Load(), 10), nil
	}

	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	resp, err := s.handler.HandleRequest(msg)
	if err != nil {
		return "", fmt.Errorf("handler: %w", err)
	}
	if strings.ContainsRune(resp, '\n') {
		return "", ErrEmbeddedNewline
	}

	return resp, nil
}

// readLine reads one newline-terminated line, enforcing the protocol line
// limit, and returns it without the terminator.
func readLine(reader *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, err := reader.ReadSlice('\n')
		b.Write(chunk)

		if b.Len() > maxLineBytes {
			return "", fmt.Errorf("line exceeds %d bytes", maxLineBytes)
		}
		if err == nil {
			return strings.TrimRight(b.String(), "\r\n"), nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		return "", err
	}
}
