// sessiond is a small demo server showing the session subsystem end to end:
// signed cookies, the cache-mirrored durable backend and the flash channel,
// selected entirely through environment configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/record"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type serverConfig struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("sessiond exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srvCfg serverConfig
	if err := config.Load(&srvCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithService("sessiond"),
		logger.WithLevel(srvCfg.LogLevel),
		logger.WithFormat(logger.Format(srvCfg.LogFormat)),
	)
	logger.SetAsDefault(log)

	var sessCfg session.Config
	if err := config.Load(&sessCfg); err != nil {
		return err
	}

	mgrOpts, cleanup, err := backendOptions(ctx, sessCfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	mgr, err := session.New(sessCfg, append(mgrOpts, session.WithLogger(log))...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router(mgr, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srvCfg.Addr), logger.Backend(sessCfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// backendOptions wires the stores the configured backend needs: nothing for
// cookie sessions, Redis for cache sessions, Redis plus Postgres (with the
// schema migrated) for durable ones.
func backendOptions(ctx context.Context, cfg session.Config, log *slog.Logger) ([]session.Option, func(), error) {
	kind, err := session.ParseKind(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}

	noop := func() {}
	if kind == session.KindCookie {
		return nil, noop, nil
	}

	var redisCfg redisConfig
	if err := config.Load(&redisCfg); err != nil {
		return nil, nil, err
	}

	client, err := connectRedis(ctx, redisCfg)
	if err != nil {
		return nil, nil, err
	}
	cache := record.NewRedisCache(client, cfg.CacheNamespace)

	if kind == session.KindCache {
		store := record.NewCacheStore(cache, cfg.CacheTTL)
		return []session.Option{session.WithCacheStore(store)},
			func() { _ = client.Close() }, nil
	}

	var pgCfg postgresConfig
	if err := config.Load(&pgCfg); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	pool, err := connectPostgres(ctx, pgCfg)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	if err := record.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		_ = client.Close()
		return nil, nil, err
	}

	mirror := record.NewMirror(record.NewPostgresStore(pool), cache,
		record.WithCacheTTL(cfg.CacheTTL),
		record.WithRetry(cfg.RetryAttempts, cfg.RetryBaseInterval),
		record.WithLogger(log),
	)

	return []session.Option{session.WithDurableStore(mirror)},
		func() { pool.Close(); _ = client.Close() }, nil
}

func router(mgr *session.Manager, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(mgr.Middleware)

	r.Get("/", handleVisit)
	r.Post("/flash", handleSetFlash)
	r.Get("/flash", handleGetFlash)
	r.Post("/logout", handleLogout)

	return r
}

type requestIDKey struct{}

// requestID tags every request with a fresh id, honoring one supplied by an
// upstream proxy.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				logger.RequestID(r.Context().Value(requestIDKey{})),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

func handleVisit(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	sess, err := store.GetSession()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	visits, _ := sess.GetInt("visits")
	visits++
	sess.Set("visits", visits)

	fmt.Fprintf(w, "visit #%d\n", visits)
}

func handleSetFlash(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	msg := r.FormValue("message")
	if msg == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	if err := store.SetFlash(msg); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleGetFlash(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	msg, ok := store.GetFlash()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fmt.Fprintf(w, "%v\n", msg)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	if err := store.DestroySession(); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
