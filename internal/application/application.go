package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/overchan/chanfront/internal/api"
	"github.com/overchan/chanfront/internal/config"
	"github.com/overchan/chanfront/internal/fonts"
	"github.com/overchan/chanfront/internal/hosts"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	fonts   *fonts.Store
	matcher *hosts.Matcher
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	fontStore := fonts.NewStore(cfg.Assets.CaptchaFontDir)
	if err := fontStore.Scan(); err != nil {
		return nil, fmt.Errorf("scan captcha fonts: %w", err)
	}
	if fontStore.Len() == 0 && !cfg.Site.Debug {
		logger.Warn("no captcha fonts found",
			zap.String("dir", cfg.Assets.CaptchaFontDir))
	}

	matcher, err := hosts.NewMatcher(cfg.Site.AllowedHosts, cfg.Site.Debug)
	if err != nil {
		return nil, fmt.Errorf("build host matcher: %w", err)
	}

	handler := api.NewHandler(cfg.Site, fontStore)
	apiRouter := api.NewRouter(handler, matcher, logger,
		api.WithLogging(cfg.HTTP.EnableRequestLogging),
		api.WithRateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(cfg.Assets, apiRouter)
	server := NewServer(cfg.HTTP, rootHandler)

	return &App{
		fonts:   fontStore,
		matcher: matcher,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  server,
	}, nil
}

// BuildRootHandler constructs the root HTTP handler: static and media file
// servers mounted at their configured URL prefixes, the API router under
// /api/, and the landing page at the root if the static root carries one.
func BuildRootHandler(assets config.Assets, apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	staticURL := normalizePrefix(assets.StaticURL)
	mux.Handle(staticURL, http.StripPrefix(staticURL, http.FileServer(http.Dir(assets.StaticRoot))))

	mediaURL := normalizePrefix(assets.MediaURL)
	mux.Handle(mediaURL, http.StripPrefix(mediaURL, http.FileServer(http.Dir(assets.MediaRoot))))

	mux.Handle("/api/", apiHandler)

	indexPath := filepath.Join(assets.StaticRoot, "index.html")
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(indexPath); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.HTTP, handler http.Handler) *http.Server {
	addr := cfg.Listen
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Fonts returns the captcha font store.
func (a *App) Fonts() *fonts.Store {
	return a.fonts
}

// normalizePrefix ensures a URL prefix has both a leading and a trailing slash.
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
