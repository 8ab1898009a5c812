package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const connectionTimeout = 5 * time.Second

// Server serves a Mux on a unix socket.
type Server struct {
	socketPath string
	mux        *Mux
	logger     *zap.Logger
	listener   net.Listener
}

// NewServer creates a server for socketPath. A nil logger discards logs.
func NewServer(socketPath string, mux *Mux, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		socketPath: socketPath,
		mux:        mux,
		logger:     logger,
	}
}

// Start starts listening on the socket.
func (s *Server) Start(ctx context.Context) error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = listener.Close()

		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener

	return nil
}

// Serve accepts connections until ctx is cancelled or the listener closes,
// then waits for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server not started")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		_ = s.listener.Close()

		return nil
	})

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || gctx.Err() != nil {
				break
			}
			s.logger.Warn("Accept failed", zap.Error(err))

			continue
		}

		g.Go(func() error {
			s.handleConnection(gctx, conn)

			return nil
		})
	}

	cancel()
	err := g.Wait()
	_ = os.Remove(s.socketPath)

	return err
}

// Close stops accepting connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}

	return s.listener.Close()
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(connectionTimeout))

	if err := verifyPeerCredentials(conn); err != nil {
		s.logger.Warn("Rejected engine client", zap.Error(err))
		s.sendError(conn, err.Error())

		return
	}

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			s.sendError(conn, fmt.Sprintf("failed to decode request: %v", err))
		}

		return
	}

	s.logger.Debug("Engine call", zap.String("method", req.Method), zap.Int("args", req.Args.Len()))

	// Handlers may run longer than the read deadline.
	_ = conn.SetDeadline(time.Time{})
	resp := s.mux.ServeRequest(ctx, &req)

	_ = conn.SetDeadline(time.Now().Add(connectionTimeout))
	//nolint:errchkjson // Response struct is safe for JSON encoding
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) sendError(conn net.Conn, msg string) {
	//nolint:errchkjson // Response struct is safe for JSON encoding
	_ = json.NewEncoder(conn).Encode(Response{Success: false, Error: msg})
}
