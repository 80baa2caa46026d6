package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/go-blog-comments/internal/pkg/log"
)

// ErrRequestTimeout — причина отмены контекста, когда запрос к стабу
// не уложился в общий дедлайн (context.Cause).
var ErrRequestTimeout = errors.New("stub: request deadline exceeded")

// Timeout ограничивает обработку запроса к стабу сроком d.
// Более ранний дедлайн вызывающего сохраняется (WithTimeoutCause берёт минимум).
// Если хендлер вернулся уже после срабатывания нашего дедлайна, это пишется в лог
// с request_id; сам ответ 504 пишут хендлеры через errors.WriteError.
// d <= 0 отключает мидлвар.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeoutCause(r.Context(), d, ErrRequestTimeout)
			defer cancel()

			started := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(context.Cause(ctx), ErrRequestTimeout) {
				logctx.From(ctx).LogAttrs(ctx, slog.LevelWarn, "request_timeout",
					slog.String("request_id", RequestIDFrom(ctx)),
					slog.String("route", routePattern(r)),
					slog.Duration("limit", d),
					slog.Duration("elapsed", time.Since(started)),
				)
			}
		})
	}
}
