package dev

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/bundle"
	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
	"github.com/husk-build/husk/pkg/middleware"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project manifest.
	Config *config.Config

	// Resolved is the environment-resolved build configuration.
	Resolved buildcfg.BuildConfiguration

	// Env is the environment snapshot used for env injection.
	Env buildcfg.Environ

	// Logger receives structured server logs.
	Logger zerolog.Logger

	// OnBuildComplete is called after each build attempt.
	OnBuildComplete func(result *bundle.Result, err error)

	// OnReload is called after browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development server.
type Server struct {
	cfg        *config.Config
	resolved   buildcfg.BuildConfiguration
	options    ServerOptions
	pipeline   *bundle.Pipeline
	watcher    *Watcher
	reload     *ReloadServer
	metrics    *serverMetrics
	log        zerolog.Logger
	httpServer *http.Server
	changeCh   chan Change
	mu         sync.Mutex
	running    bool
	hotReload  bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	hotReload := cfg.HotReload()

	pipeline := bundle.New(bundle.Options{
		Config:   cfg,
		Resolved: options.Resolved,
		Env:      options.Env,
		OutDir:   filepath.Join(cfg.Dir(), ".husk", "dev"),
		Logger:   options.Logger,
	})

	watcher := NewWatcher(WatcherConfig{
		Paths:    CollectWatchPaths(cfg, options.Resolved),
		Ignore:   cfg.Dev.Ignore,
		Debounce: 100 * time.Millisecond,
		Logger:   options.Logger,
	})

	var reload *ReloadServer
	if hotReload {
		reload = NewReloadServer()
	}

	clientCount := func() int {
		if reload == nil {
			return 0
		}
		return reload.ClientCount()
	}

	return &Server{
		cfg:       cfg,
		resolved:  options.Resolved,
		options:   options,
		pipeline:  pipeline,
		watcher:   watcher,
		reload:    reload,
		metrics:   newServerMetrics(clientCount),
		log:       options.Logger,
		hotReload: hotReload,
	}
}

// Addr returns the address the server binds.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Dev.Host, fmt.Sprintf("%d", s.resolved.DevServer.Port))
}

// URL returns the full URL of the dev server.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Start runs the server until the context is canceled. The listener is bound
// before anything else: with StrictPort the server refuses to start on any
// port other than the resolved one.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return errors.New("E301").
			WithDetail(fmt.Sprintf("could not bind %s: %v", s.Addr(), err)).
			WithSuggestion("Stop the process holding the port; the strict-port policy never substitutes another one").
			Wrap(err)
	}

	// Initial build. A failure is surfaced in the browser overlay instead of
	// killing the server, so fixing the source recovers without a restart.
	s.rebuild(ctx)

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{Handler: s.router()}

	s.log.Info().Str("url", s.URL()).Msg("dev server running")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		if err != nil {
			return errors.New("E303").Wrap(err)
		}
		return nil
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.watcher.Stop()
	if s.reload != nil {
		s.reload.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// router builds the HTTP surface.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Metrics(
		middleware.WithRegistry(s.metrics.registry),
		middleware.WithSubsystem("dev_http"),
	))
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerName("husk/dev"),
		middleware.WithRequestFilter(func(req *http.Request) bool {
			return req.URL.Path != "/metrics" && req.URL.Path != "/__husk/reload"
		}),
	))

	if s.reload != nil {
		r.Get("/__husk/reload", s.reload.HandleWebSocket)
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Get("/*", s.serveFile)

	return r
}

// serveFile serves the latest build output, injecting the reload client into
// HTML documents.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" {
		rel = s.resolved.EntryPoints["main"]
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if strings.HasPrefix(rel, "..") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.pipeline.OutDir(), filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(rel, ".html") && s.reloadEnabled() {
		body, err := os.ReadFile(path)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(injectReloadScript(body))
		return
	}

	http.ServeFile(w, r, path)
}

// injectReloadScript places the reload client before </body>, or appends it
// when the document has no closing tag.
func injectReloadScript(body []byte) []byte {
	html := string(body)
	if idx := strings.LastIndex(html, "</body>"); idx != -1 {
		return []byte(html[:idx] + ReloadClientScript + html[idx:])
	}
	if idx := strings.LastIndex(html, "</html>"); idx != -1 {
		return []byte(html[:idx] + ReloadClientScript + html[idx:])
	}
	return []byte(html + ReloadClientScript)
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges handles a batch of file changes. CSS-only bursts avoid a
// full rebuild; everything else goes through the pipeline.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}

	cssOnly := true
	for _, change := range changes {
		s.log.Debug().Str("path", change.Path).Msg("changed")
		if change.Type != ChangeCSS {
			cssOnly = false
		}
	}

	if cssOnly && s.reloadEnabled() {
		s.reload.NotifyCSS(changes[0].Path)
		s.log.Info().Msg("css reloaded")
		return
	}

	if s.rebuild(ctx) {
		s.notifyReload()
	}
}

// rebuild runs the pipeline and reports the outcome. Returns true on success.
func (s *Server) rebuild(ctx context.Context) bool {
	start := time.Now()
	result, err := s.pipeline.Build(ctx)
	s.metrics.rebuildDuration.Observe(time.Since(start).Seconds())

	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result, err)
	}

	if err != nil {
		s.metrics.rebuildsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("build failed")
		if s.reloadEnabled() {
			s.reload.NotifyError(err.Error())
		}
		return false
	}

	s.metrics.rebuildsTotal.WithLabelValues("success").Inc()
	if s.reloadEnabled() {
		s.reload.ClearError()
	}
	return true
}

func (s *Server) reloadEnabled() bool {
	return s.hotReload && s.reload != nil
}

func (s *Server) notifyReload() {
	if !s.reloadEnabled() {
		return
	}

	s.reload.NotifyReload()
	s.metrics.reloadsTotal.Inc()
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
	s.log.Info().Int("clients", s.reload.ClientCount()).Msg("browsers reloaded")
}
