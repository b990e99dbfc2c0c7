package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/cache"
	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/db"
	"github.com/debemdeboas/churchhelp/internal/editor"
	"github.com/debemdeboas/churchhelp/internal/logger"
	"github.com/debemdeboas/churchhelp/internal/render"
	"github.com/debemdeboas/churchhelp/internal/routes"
	"github.com/debemdeboas/churchhelp/internal/sink"
	"github.com/debemdeboas/churchhelp/internal/sse"
	"github.com/debemdeboas/churchhelp/internal/theme"
	"github.com/debemdeboas/churchhelp/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

var mainLogger zerolog.Logger

func main() {
	// S3 credentials usually live in .env; a missing file is fine.
	_ = godotenv.Load()

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = "config.yaml"
	}

	config.SetLogger(logger.New("info"))
	if err := config.LoadConfig(configPath); err != nil {
		bootLogger := logger.New("info")
		bootLogger.Fatal().Err(err).Str("path", configPath).Msg("Error loading configuration")
	}
	cfg := config.AppConfig

	root := logger.New(cfg.Logging.Level)
	mainLogger = logger.Component(root, "main")
	config.SetLogger(logger.Component(root, "config"))
	db.SetLogger(logger.Component(root, "db"))
	sink.SetLogger(logger.Component(root, "sink"))
	editor.SetLogger(logger.Component(root, "editor"))
	render.SetLogger(logger.Component(root, "render"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	submissions, closeSinks, err := sink.New(ctx, cfg.Sink)
	if err != nil {
		mainLogger.Fatal().Err(err).Strs("sinks", cfg.Sink.Types).Msg("Error configuring submission sinks")
	}
	defer closeSinks()

	clients := sse.NewSSEClients()
	repo := editor.NewMemoryRepository(false, editor.BroadcastReload(clients))

	handler, err := newServer(repo, clients, submissions)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Error building server")
	}

	go sweepSessions(ctx, repo, cfg.Editor.SessionIdle())

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	mainLogger.Info().Str("addr", srv.Addr).Str("site", cfg.Site.Name).Msg("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLogger.Fatal().Err(err).Msg("Server stopped")
	}
	mainLogger.Info().Msg("Server stopped")
}

// newServer wires every route onto a fresh mux.
func newServer(repo editor.Repository, clients *sse.SSEClients, s sink.Sink) (http.Handler, error) {
	static, err := fs.Sub(content, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}

	// Calculate the hash of static content
	err = fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		return nil
	})
	if err != nil {
		return nil, err
	}

	editorHandler, err := editor.NewHandler(repo, clients, s, content)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mid := func(h http.HandlerFunc) http.HandlerFunc { return secureHeaders(cacheIt(h)) }

	mux.HandleFunc("GET "+routes.Robots, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})

	mux.Handle("GET "+config.StaticUrlPath, mid(http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))).ServeHTTP))
	mux.HandleFunc("POST "+routes.ThemeToggle, mid(serveThemeToggle))
	mux.HandleFunc("GET "+routes.SyntaxTheme, mid(serveSyntaxTheme))

	editorHandler.Routes(mux, mid)

	return mux, nil
}

func sweepSessions(ctx context.Context, repo editor.Repository, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}

	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := repo.Sweep(maxIdle); n > 0 {
				mainLogger.Info().Int("sessions", n).Msg("Discarded idle drafts")
			}
		case <-ctx.Done():
			return
		}
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")

		h(w, r)
	}
}

func serveThemeToggle(w http.ResponseWriter, r *http.Request) {
	if !config.AppConfig.Theme.AllowSwitching {
		http.NotFound(w, r)
		return
	}

	newTheme := theme.Toggle(theme.GetThemeFromRequest(r))

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	syntaxTheme := theme.GetDefaultSyntaxTheme(newTheme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil {
		syntaxTheme = cookie.Value
	}

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"value": newTheme, "syntaxTheme": syntaxTheme},
	})
	w.Header().Set(config.HHxTrigger, string(trigger))
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func serveSyntaxTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("theme")
	if _, ok := styles.Registry[name]; !ok {
		http.NotFound(w, r)
		return
	}

	themeStyle := []byte(theme.GenerateSyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}
