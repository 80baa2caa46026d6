package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-blog-comments/internal/api"
	"github.com/pribylovaa/go-blog-comments/internal/config"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/pkg/redact"
	"github.com/pribylovaa/go-blog-comments/internal/section"
	"github.com/pribylovaa/go-blog-comments/internal/session"
	"github.com/pribylovaa/go-blog-comments/internal/tui"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath, article string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&article, "article", "", "article id (overrides config)")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	if article != "" {
		cfg.Article.ID = article
	}

	// Терминал занят интерфейсом: лог пишется в файл.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file %q: %v\n", cfg.Log.File, err)
		os.Exit(1)
	}
	defer logFile.Close()

	log := setupLogger(cfg.Env, logFile)
	slog.SetDefault(log)
	log.Info("starting comments", "env", cfg.Env, "article_id", cfg.Article.ID)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	viewer, err := session.FromToken(cfg.Session.Token)
	if err != nil {
		log.Warn("session_token_invalid", slog.String("err", err.Error()))
		viewer = session.Anonymous()
	}

	log.Info("session_resolved",
		slog.Bool("authenticated", viewer.Authenticated),
		slog.String("user", redact.Username(viewer.User.Username)),
		slog.String("token", redact.Token(cfg.Session.Token)),
	)

	client, err := api.New(api.Options{
		BaseURL:      cfg.API.BaseURL,
		SessionToken: cfg.Session.Token,
		CookieName:   cfg.Session.CookieName,
		Timeout:      cfg.API.Timeout,
		Logger:       log,
		Registerer:   prometheus.DefaultRegisterer,
	})
	if err != nil {
		log.Error("client_init_failed", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled() {
		metricsSrv = startMetrics(log, cfg.Metrics.Addr())
	}

	sec := section.New(client, section.Options{
		ArticleID: models.ID(cfg.Article.ID),
		Viewer:    viewer,
		NoticeTTL: cfg.UI.NoticeTTL,
		Logger:    log,
		OnCountChange: func(total int) {
			log.Debug("comment_count_changed", slog.Int("total", total))
		},
	})
	defer sec.Close()

	model := tui.New(sec, tui.Options{Title: "Comments · article " + cfg.Article.ID})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(rootCtx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Error("ui_failed", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, err)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics_shutdown_incomplete", slog.String("err", err.Error()))
		}
	}

	log.Info("comments_stopped")
}

// startMetrics поднимает /metrics клиента; ошибка слушателя не останавливает интерфейс.
func startMetrics(log *slog.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Warn("metrics_listen_failed", slog.String("addr", addr), slog.String("err", err.Error()))
		return nil
	}

	log.Info("metrics_listen_start", slog.String("addr", addr))

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics_serve_failed", slog.String("err", err.Error()))
		}
	}()

	return srv
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
