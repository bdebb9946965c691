// SPDX-License-Identifier: MPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kurso/internal/watch"
	"kurso/pkg/types"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type (
	// Options configure a preview server.
	Options struct {
		// Addr is the listen address; an empty port picks a free one.
		Addr types.ListenAddr
		// CourseDir is where course discovery starts.
		CourseDir string
		// SiteDir overrides the manifest output directory.
		SiteDir string
		// LiveReload injects the reload client and exposes /livereload.
		LiveReload bool
		// Metrics exposes /metrics.
		Metrics bool
		// Version is reported by /healthz.
		Version string
		// Logger receives request and build logs; nil uses the default.
		Logger *log.Logger
	}

	// Server serves the built site over HTTP and rebuilds it on change.
	Server struct {
		opts     Options
		logger   *log.Logger
		builder  *builder
		reloader *reloader

		httpSrv     *http.Server
		listener    net.Listener
		cancelWatch context.CancelFunc
		wg          sync.WaitGroup
		errCh       chan error

		started  atomic.Bool
		stopOnce sync.Once
		stopErr  error
	}
)

// New validates opts and assembles a Server. Nothing is built or bound
// until Start.
func New(opts Options) (*Server, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("server: listen address is required")
	}
	if err := opts.Addr.Validate(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if opts.CourseDir == "" {
		opts.CourseDir = "."
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("serve")

	reloader := newReloader()
	return &Server{
		opts:     opts,
		logger:   logger,
		reloader: reloader,
		builder: &builder{
			courseDir:  opts.CourseDir,
			siteDir:    opts.SiteDir,
			liveReload: opts.LiveReload,
			logger:     logger,
			reloader:   reloader,
		},
		errCh: make(chan error, 2),
	}, nil
}

// Start builds the site, binds the listener, and launches the HTTP server
// and the rebuild watcher. It returns once the server is accepting
// connections; later failures arrive on Err.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("server: Start called more than once")
	}

	if err := s.builder.rebuild(ctx); err != nil {
		return fmt.Errorf("server: initial build: %w", err)
	}
	c, res := s.builder.snapshot()

	listener, err := net.Listen("tcp", s.opts.Addr.String())
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.opts.Addr, err)
	}
	s.listener = listener

	s.httpSrv = &http.Server{
		Handler:           s.router(res.Dir),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if serveErr := s.httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("server: serve: %w", serveErr)
		}
	}()

	// The watcher outlives the startup context; Stop cancels it.
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelWatch = cancel

	watcher, err := watch.New(watch.ForCourse(c, s.builder.onChange))
	if err != nil {
		// Serving a static snapshot still works without a watcher.
		s.logger.Error("file watcher unavailable, live rebuild disabled", "err", err)
	} else {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if watchErr := watcher.Run(watchCtx); watchErr != nil {
				s.errCh <- fmt.Errorf("server: watch: %w", watchErr)
			}
		}()
	}

	s.logger.Info("preview server listening",
		"addr", s.Address(), "course", c.Manifest.Title, "livereload", s.opts.LiveReload)
	return nil
}

// Stop shuts the server down gracefully. It is safe to call more than once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		if s.cancelWatch != nil {
			s.cancelWatch()
		}
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.httpSrv.Shutdown(ctx); err != nil {
				s.stopErr = fmt.Errorf("server: shutdown: %w", err)
			}
		}
		s.wg.Wait()
		s.logger.Info("preview server stopped")
	})
	return s.stopErr
}

// Err delivers fatal errors from the serving and watching goroutines.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Address returns the bound address after Start, or the configured one.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr.String()
}

// router assembles the chi handler chain around the built site at siteDir.
func (s *Server) router(siteDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	if s.opts.Metrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}
	if s.opts.LiveReload {
		r.Get("/livereload", s.reloader.handler())
	}
	r.Handle("/*", siteHandler(siteDir))

	return r
}

// handleHealthz reports liveness and the running version.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": s.opts.Version,
	})
}
