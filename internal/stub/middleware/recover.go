package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	logctx "github.com/pribylovaa/go-blog-comments/internal/pkg/log"
	apierrors "github.com/pribylovaa/go-blog-comments/internal/stub/errors"
)

// Recover ловит panic в хендлерах стаба и отвечает конвертом
// {"error":{"code":"internal",...,"request_id":...}} со статусом 500.
// Причина и стек уходят только в лог с тем же request_id,
// по которому клиент сообщает об ошибке.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// net/http сам обрывает соединение без записи в лог.
					panic(rec)
				}

				rid := RequestIDFrom(r.Context())
				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "handler_panic",
					slog.String("request_id", rid),
					slog.String("method", r.Method),
					slog.String("route", routePattern(r)),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
				)

				status, resp := apierrors.ToHTTP(nil)
				resp.Error.RequestID = rid
				writeEnvelope(w, status, resp)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// routePattern отдаёт шаблон chi ("/api/comments/{id}"), а без роутера — путь.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func writeEnvelope(w http.ResponseWriter, status int, resp apierrors.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
