package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-blog-comments/internal/pkg/log"
)

// Logging пишет одну запись на исходящий запрос: op, method, path, status, dur, request_id.
// Логгер берётся из контекста запроса, иначе base.
// Тела запросов/ответов и cookie не логируются.
func Logging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(r *http.Request) (*http.Response, error) {
			l := base
			if l == nil {
				l = log.From(r.Context())
			}

			start := time.Now()
			resp, err := next.RoundTrip(r)

			attrs := []slog.Attr{
				slog.String("op", OpFrom(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("dur", time.Since(start)),
			}

			if rid := r.Header.Get(HeaderRequestID); rid != "" {
				attrs = append(attrs, slog.String("request_id", rid))
			}

			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
				l.LogAttrs(r.Context(), slog.LevelWarn, "http_client", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			level := slog.LevelInfo
			if resp.StatusCode >= 500 {
				level = slog.LevelWarn
			}

			l.LogAttrs(r.Context(), level, "http_client", attrs...)
			return resp, nil
		})
	}
}
