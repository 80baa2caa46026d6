package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	logctx "github.com/pribylovaa/go-blog-comments/internal/pkg/log"
	"github.com/pribylovaa/go-blog-comments/internal/session"
)

type userKey struct{}

// Session извлекает токен сессии из cookie cookieName или из заголовка
// Authorization: Bearer, проверяет его и кладёт пользователя в контекст.
// Запрос без токена или с негодным токеном идёт дальше анонимным:
// решение о доступе принимают хендлеры.
func Session(iss *session.Issuer, cookieName string) Middleware {
	if cookieName == "" {
		cookieName = session.CookieName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				if ck, err := r.Cookie(cookieName); err == nil {
					token = ck.Value
				}
			}

			if token != "" {
				u, err := iss.Verify(token)
				if err != nil {
					logctx.From(r.Context()).Warn("session rejected", "err", err)
				} else {
					ctx := context.WithValue(r.Context(), userKey{}, u)
					ctx = logctx.With(ctx, "user_id", u.ID.String())
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}

	return ""
}

// UserFrom возвращает пользователя сессии.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}

// WithUser кладёт пользователя в контекст (для тестов хендлеров).
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}
