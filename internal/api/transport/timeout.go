package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Timeout навешивает дедлайн d на запрос, если у контекста его ещё нет.
// Контракт:
//  1. d <= 0 — no-op;
//  2. существующий дедлайн не переопределяется;
//  3. cancel вызывается при закрытии тела ответа (или сразу при ошибке),
//     чтобы дедлайн покрывал и чтение тела.
func Timeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if d <= 0 {
			return next
		}

		return Func(func(r *http.Request) (*http.Response, error) {
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
