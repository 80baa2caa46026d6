// Package stub — in-memory двойник REST-бэкенда комментариев для локального
// запуска и end-to-end тестов клиента.
package stub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-comments/internal/session"
	"github.com/pribylovaa/go-blog-comments/internal/stub/handlers"
	"github.com/pribylovaa/go-blog-comments/internal/stub/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	BasePath   string // например, "/api"; если пустой — роуты регистрируются на корне.
	CookieName string
	Metrics    *middleware.HTTPMetrics
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(store handlers.Store, iss *session.Issuer, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),                   // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),          // кладём request-scoped логгер в контекст и логируем
		middleware.Recover(),                     // паника -> 500 с request_id, статус видит Logging
		middleware.Session(iss, opts.CookieName), // пользователь сессии из cookie/Bearer
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(store)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/articles/{article_id}/comments", h.ListComments)
	r.Post("/comments", h.CreateComment)
	r.Put("/comments/{id}", h.UpdateComment)
	r.Delete("/comments/{id}", h.DeleteComment)
	r.Post("/comments/{id}/like", h.ToggleLike)
	r.Post("/comments/{id}/report", h.ReportComment)
}
