package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — счётчики исходящих запросов клиента комментариев.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics создаёт коллекторы и регистрирует их в reg (если reg != nil).
// Повторная регистрация тех же коллекторов переиспользует уже зарегистрированные.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comments_client",
			Name:      "requests_total",
			Help:      "Outgoing comment API requests by operation and status code.",
		}, []string{"op", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "comments_client",
			Name:      "request_duration_seconds",
			Help:      "Outgoing comment API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	if reg != nil {
		m.requests = register(reg, m.requests)
		m.duration = register(reg, m.duration)
	}

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

// Middleware считает запросы; транспортная ошибка идёт с code="error".
func (m *Metrics) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(r *http.Request) (*http.Response, error) {
			op := OpFrom(r.Context())
			start := time.Now()

			resp, err := next.RoundTrip(r)

			m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.requests.WithLabelValues(op, code).Inc()

			return resp, err
		})
	}
}

// Requests — счётчик для проверок в тестах.
func (m *Metrics) Requests() *prometheus.CounterVec { return m.requests }
