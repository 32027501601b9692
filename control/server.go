// Package control serves the TCP channel used to retune a running camera. Every connection
// sends a stream of small binary messages; see HandleMessage for the format.
package control

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/utils"
)

// Server accepts control connections and applies their messages to a Tuner.
type Server struct {
	listener net.Listener
	tuner    Tuner
	logger   logging.Logger
	workers  utils.StoppableWorkers

	mu     sync.Mutex
	conns  map[string]net.Conn
	closed bool
}

// NewServer listens on addr, such as ":9000", and starts accepting connections.
func NewServer(addr string, tuner Tuner, logger logging.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot listen on %q", addr)
	}
	return NewServerFromListener(listener, tuner, logger), nil
}

// NewServerFromListener serves connections accepted from listener.
func NewServerFromListener(listener net.Listener, tuner Tuner, logger logging.Logger) *Server {
	s := &Server{
		listener: listener,
		tuner:    tuner,
		logger:   logger,
		conns:    map[string]net.Conn{},
	}
	// The accept loop reads s.workers as soon as a connection arrives, so it must be set first.
	s.workers = utils.NewStoppableWorkers()
	s.workers.AddWorkers(s.acceptLoop)
	logger.Infow("control server listening", "addr", listener.Addr().String())
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Errorw("cannot accept control connection", "error", err)
			}
			return
		}
		s.ServeConn(conn)
	}
}

// ServeConn handles messages from conn in the background until the peer disconnects or the
// server is closed.
func (s *Server) ServeConn(conn net.Conn) {
	id := uuid.NewString()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debugw("rejecting control connection after close", "remote", conn.RemoteAddr())
		goutils.UncheckedError(conn.Close())
		return
	}
	s.conns[id] = conn
	s.mu.Unlock()

	s.workers.AddWorkers(func(ctx context.Context) {
		defer func() {
			s.mu.Lock()
			delete(s.conns, id)
			s.mu.Unlock()
			goutils.UncheckedError(conn.Close())
		}()
		s.handleConn(ctx, id, conn)
	})
}

func (s *Server) handleConn(ctx context.Context, id string, conn net.Conn) {
	logger := s.logger.Sublogger(id)
	logger.Infow("control connection opened", "remote", conn.RemoteAddr())
	buf := make([]byte, MaxMessageSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if err := HandleMessage(buf[:n], s.tuner); err != nil {
				logger.Warnw("ignoring control message", "bytes", n, "error", err)
			} else {
				logger.Debugw("applied control message", "tag", buf[0])
			}
		}
		if err != nil {
			if ctx.Err() == nil {
				logger.Infow("control connection closed", "reason", err)
			}
			return
		}
	}
}

// Close stops accepting, closes every open connection and waits for their handlers.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	err := s.listener.Close()
	for _, conn := range s.conns {
		err = multierr.Append(err, conn.Close())
	}
	s.mu.Unlock()

	s.workers.Stop()
	return err
}
