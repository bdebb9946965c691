// SPDX-License-Identifier: MPL-2.0

// Package sshserver exposes the study TUI over SSH with wish. Every
// session gets its own bubbletea program rendering against the session's
// terminal; the SSH user string identifies the learner in the shared
// progress store.
package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"kurso/internal/progress"
	"kurso/internal/study"
)

const shutdownTimeout = 5 * time.Second

// Server serves study sessions over SSH. A Server is single-use: once
// stopped or failed, create a new instance.
type Server struct {
	cfg    Config
	logger *log.Logger

	state atomic.Int32

	mu       sync.Mutex
	srv      *ssh.Server
	listener net.Listener
	addr     string

	errCh    chan error
	stopOnce sync.Once
	stopErr  error
}

// New validates cfg and assembles a server. Nothing binds until Start.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("ssh"),
		errCh:  make(chan error, 1),
	}
	s.state.Store(int32(StateCreated))
	return s, nil
}

// State returns the current lifecycle state.
func (s *Server) State() ServerState {
	return ServerState(s.state.Load())
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Err delivers a fatal serve error, if one occurs after Start returned.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Start binds the listener and begins accepting sessions. It returns once
// the server is ready; later failures arrive on Err.
func (s *Server) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return ErrServerAlreadyStarted
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.HostKeyPath), 0o700); err != nil {
		s.state.Store(int32(StateFailed))
		return fmt.Errorf("create host key directory: %w", err)
	}

	srv, err := wish.NewServer(
		wish.WithAddress(s.cfg.Addr.String()),
		wish.WithHostKeyPath(s.cfg.HostKeyPath),
		wish.WithMiddleware(
			bm.Middleware(s.sessionHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(s.logger),
		),
	)
	if err != nil {
		s.state.Store(int32(StateFailed))
		return fmt.Errorf("create ssh server: %w", err)
	}

	listener, err := net.Listen("tcp", s.cfg.Addr.String())
	if err != nil {
		s.state.Store(int32(StateFailed))
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.srv = srv
	s.listener = listener
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, ssh.ErrServerClosed) {
			s.state.Store(int32(StateFailed))
			select {
			case s.errCh <- serveErr:
			default:
			}
			return
		}
		s.state.CompareAndSwap(int32(StateStopping), int32(StateStopped))
	}()

	s.state.Store(int32(StateRunning))
	s.logger.Info("ssh study server listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()
	return nil
}

// Stop shuts the server down, waiting briefly for open sessions.
func (s *Server) Stop() error {
	switch s.State() {
	case StateCreated:
		return ErrServerNotRunning
	case StateStopped, StateFailed:
		return s.stopErr
	}

	s.stopOnce.Do(func() {
		s.state.Store(int32(StateStopping))
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.stopErr = fmt.Errorf("shutdown ssh server: %w", err)
		}
		s.state.Store(int32(StateStopped))
	})
	return s.stopErr
}

// sessionHandler builds the per-session study program: the session user is
// the learner, and rendering goes through a renderer bound to the
// session's terminal.
func (s *Server) sessionHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	learner := sess.User()
	if learner == "" {
		learner = progress.DefaultLearner
	}

	m, err := study.New(study.Options{
		Course:   s.cfg.Course,
		Store:    s.cfg.Store,
		Learner:  learner,
		Theme:    s.cfg.Theme,
		Renderer: bm.MakeRenderer(sess),
	})
	if err != nil {
		s.logger.Error("refusing session", "user", learner, "err", err)
		wish.Fatalln(sess, "cannot study this course:", err)
		return nil, nil
	}
	s.logger.Info("study session started", "user", learner)
	return m, []tea.ProgramOption{tea.WithAltScreen()}
}
