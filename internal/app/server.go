// internal/app/server.go
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wisatakota/internal/places"
)

// Config holds runtime settings for the server.
type Config struct {
	SecretKey     string
	CacheTTL      time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sane defaults. SecretKey is left empty and must
// be filled in by the caller.
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:        DefaultCacheTTL,
		SessionTTL:      DefaultSessionTTL,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Searcher finds attractions in a city.
type Searcher interface {
	SearchCity(ctx context.Context, city string) ([]places.Place, error)
}

// Server is the application server.
type Server struct {
	cfg      *Config
	cache    *Cache
	search   Searcher
	sessions *SessionBinder
	views    *Renderer
	feeds    *FeedHandler
	log      *zap.Logger
	mux      *http.ServeMux
}

// NewServer creates a new Server with provided config.
func NewServer(cfg *Config, search Searcher, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if search == nil {
		return nil, errors.New("app: a Searcher is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	sessions, err := NewSessionBinder(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookies, log.Named("session"))
	if err != nil {
		return nil, err
	}
	views, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	c := NewCache(cfg.CacheTTL)

	s := &Server{
		cfg:      cfg,
		cache:    c,
		search:   search,
		sessions: sessions,
		views:    views,
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.feeds = &FeedHandler{resolve: s.currentEntry, log: log.Named("feed")}

	s.registerRoutes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.withCommonHeaders(s.mux))
}

// Cache exposes the result cache.
func (s *Server) Cache() *Cache {
	return s.cache
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	h := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// outbound provider calls can take up to 15s
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", zap.String("addr", addr))
		if err := h.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /home", s.handleHome)
	s.mux.HandleFunc("GET /about", s.handleAbout)
	s.mux.HandleFunc("GET /search", s.handleSearchGet)
	s.mux.HandleFunc("POST /search", s.handleSearchPost)
	s.mux.HandleFunc("GET /detail/{id}", s.handleDetail)
	s.mux.Handle("GET /search/feed", s.feeds)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// withCommonHeaders adds common headers.
func (s *Server) withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "wisatakota")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		h.ServeHTTP(w, r)
	})
}

// handleHealth returns JSON health information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "ok",
		"service":    "wisatakota",
		"cache_size": s.cache.Size(),
		"timestamp":  time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(health); err != nil {
		s.log.Warn("Failed to write health response", zap.Error(err))
	}
}
