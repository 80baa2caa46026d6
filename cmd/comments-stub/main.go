package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-blog-comments/internal/config"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/pkg/redact"
	"github.com/pribylovaa/go-blog-comments/internal/session"
	"github.com/pribylovaa/go-blog-comments/internal/stub"
	"github.com/pribylovaa/go-blog-comments/internal/stub/middleware"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting comments-stub", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	st := storage.NewMemory()
	iss := session.NewIssuer(cfg.Stub.JWTSecret, cfg.Stub.TokenTTL)

	if cfg.Stub.Seed {
		if err := stub.Seed(rootCtx, st, models.ID(cfg.Article.ID)); err != nil {
			log.Error("seed_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}

		// Токены демо-пользователей для SESSION_TOKEN клиента (в открытом виде только local).
		for _, u := range stub.DemoUsers() {
			token, err := iss.Issue(u)
			if err != nil {
				log.Error("token_issue_failed", slog.String("user", u.Username), slog.String("err", err.Error()))
				os.Exit(1)
			}
			if cfg.Env != envLocal {
				token = redact.Token(token)
			}
			log.Info("demo_session", slog.String("user", u.Username), slog.String("role", u.Role), slog.String("token", token))
		}
	}

	apiHandler := stub.NewRouter(st, iss, stub.Options{
		Logger:     log,
		Timeout:    cfg.Stub.Timeout,
		BasePath:   "/api",
		CookieName: cfg.Session.CookieName,
		Metrics:    middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.Stub.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("stub_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
