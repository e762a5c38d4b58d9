// Package transport implements the TCP accept loop and per-connection
// workers that speak the length-prefixed, zlib-compressed JSON frames
// defined in internal/protocol (spec §5, §6).
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shrvim/shrvimd/internal/logging"
	"github.com/shrvim/shrvimd/internal/protocol"
)

// pollQuantum is the accept loop's readiness-wait granularity (spec §5:
// "a sub-second poll quantum (8 Hz)").
const pollQuantum = time.Second / 8

// connTimeout bounds each blocking read/write so a worker notices a
// shutdown request between frames (spec §5: "on the order of one
// second").
const connTimeout = time.Second

// Handler processes one decoded request and returns the response to
// send back. Implementations must not block indefinitely; the manager
// call chain underneath is expected to return promptly.
type Handler func(protocol.Request) protocol.Response

// Server is a TCP accept loop with one worker goroutine per connection.
type Server struct {
	addr    string
	handler Handler
	logger  *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer constructs a Server bound to addr once Run is called.
func NewServer(addr string, handler Handler, logger *logging.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Run binds the listener, retrying with exponential backoff on failure,
// then accepts connections until Stop is called. It blocks until the
// accept loop exits.
func (s *Server) Run() error {
	listener, err := s.bindWithBackoff()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	defer listener.Close()

	tcpListener, canDeadline := listener.(*net.TCPListener)

	for {
		select {
		case <-s.stopCh:
			return nil
		default:
		}

		if canDeadline {
			tcpListener.SetDeadline(time.Now().Add(pollQuantum))
		}

		conn, err := listener.Accept()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			s.logger.Error("accept: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) bindWithBackoff() (net.Listener, error) {
	backoff := 100 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		listener, err := net.Listen("tcp", s.addr)
		if err == nil {
			return listener, nil
		}

		select {
		case <-s.stopCh:
			return nil, err
		default:
		}

		s.logger.Error("bind %s: %v; retrying in %s", s.addr, err, backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Stop signals the accept loop and every connection worker to exit, and
// waits for in-flight workers to finish their current frame.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}

// Addr reports the listener's bound address, or the configured address
// if Run has not bound a listener yet (e.g. a fixed, non-zero port
// requested at construction).
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	connID := uuid.New().String()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(connTimeout))
		body, err := protocol.DecodeFrame(conn)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			s.logger.Error("connection %s: decode frame: %v", connID, err)
			return
		}

		var req protocol.Request
		if err := json.Unmarshal(body, &req); err != nil {
			s.logger.Error("connection %s: malformed request: %v", connID, err)
			if writeErr := s.writeResponse(conn, protocol.ErrorResponse("Bad request.")); writeErr != nil {
				s.logger.Error("connection %s: write response: %v", connID, writeErr)
				return
			}
			continue
		}

		resp := s.handler(req)
		if err := s.writeResponse(conn, resp); err != nil {
			s.logger.Error("connection %s: write response: %v", connID, err)
			return
		}
	}
}

func (s *Server) writeResponse(conn net.Conn, resp protocol.Response) error {
	frame, err := protocol.EncodeFrame(resp)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(connTimeout))
	_, err = conn.Write(frame)
	return err
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
