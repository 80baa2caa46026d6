// transport — цепочка http.RoundTripper-мидлваров для исходящих запросов клиента:
// request id, дедлайн, логирование и метрики.
package transport

import (
	"context"
	"net/http"
)

// Func — адаптер функции к http.RoundTripper.
type Func func(*http.Request) (*http.Response, error)

func (f Func) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Middleware — обёртка над http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain применяет мидлвары в порядке перечисления: первый — самый внешний.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return rt
}

type opKey struct{}

// WithOp помечает запрос именем операции (низкая кардинальность для метрик и логов).
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

// OpFrom возвращает имя операции или "unknown".
func OpFrom(ctx context.Context) string {
	if v, ok := ctx.Value(opKey{}).(string); ok && v != "" {
		return v
	}

	return "unknown"
}
