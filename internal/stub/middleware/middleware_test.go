package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	logctx "github.com/pribylovaa/go-blog-comments/internal/pkg/log"
	"github.com/pribylovaa/go-blog-comments/internal/session"
	apierrors "github.com/pribylovaa/go-blog-comments/internal/stub/errors"
)

// capHandler — тестовый slog.Handler: копит attrs последней записи
// (вместе с базовыми из Logger.With) и считает записи.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func TestChain_Order(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-begin")
				next.ServeHTTP(w, r)
				order = append(order, name+"-end")
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, mw("a"), mw("b")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a-begin", "b-begin", "handler", "b-end", "a-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndKeep(t *testing.T) {
	var seenHeader, seenCtx string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeader = r.Header.Get(HeaderRequestID)
		seenCtx = RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rr.Header().Get(HeaderRequestID)
	require.Len(t, id, 36)
	require.Equal(t, id, seenHeader)
	require.Equal(t, id, seenCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "from-client")
	rr = httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, req)
	require.Equal(t, "from-client", rr.Header().Get(HeaderRequestID))
	require.Equal(t, "from-client", seenCtx)
}

func TestSession_CookieBearerAndInvalid(t *testing.T) {
	iss := session.NewIssuer("secret", time.Hour)
	ann := models.User{ID: "1", Username: "ann", Role: models.RoleAdmin}

	token, err := iss.Issue(ann)
	require.NoError(t, err)

	var got models.User
	var ok bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFrom(r.Context())
	})
	chain := Chain(h, Session(iss, ""))

	// 1) cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	require.Equal(t, ann, got)

	// 2) bearer.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)

	// 3) чужая подпись -> аноним.
	forged, err := session.NewIssuer("other", time.Hour).Issue(ann)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: forged})
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, ok)

	// 4) без токена и с не-Bearer заголовком.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, ok)
}

func TestTimeout(t *testing.T) {
	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, hasDeadline)

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, hasDeadline)
}

func TestTimeout_CauseAndLog(t *testing.T) {
	tests := []struct {
		name      string
		parent    time.Duration
		limit     time.Duration
		wantCause error
		wantLogs  int
	}{
		{name: "own deadline fires", limit: 10 * time.Millisecond, wantCause: ErrRequestTimeout, wantLogs: 1},
		{name: "earlier caller deadline wins", parent: 5 * time.Millisecond, limit: time.Minute, wantCause: context.DeadlineExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logs := &capHandler{}
			var cause error
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				cause = context.Cause(r.Context())
				apierrors.WriteError(w, r, r.Context().Err())
			})

			ctx := logctx.Into(context.Background(), slog.New(logs))
			if tc.parent > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tc.parent)
				defer cancel()
			}
			req := httptest.NewRequest(http.MethodGet, "/slow", nil)
			req.Header.Set(HeaderRequestID, "rid-slow")
			rr := httptest.NewRecorder()

			Chain(h, RequestID(), Timeout(tc.limit)).ServeHTTP(rr, req.WithContext(ctx))

			require.ErrorIs(t, cause, tc.wantCause)
			require.Equal(t, http.StatusGatewayTimeout, rr.Code)
			require.Equal(t, tc.wantLogs, logs.count)
			if tc.wantLogs > 0 {
				require.Equal(t, "request_timeout", logs.lastMsg)
				require.Equal(t, "rid-slow", logs.attrs["request_id"])
				require.Equal(t, "/slow", logs.attrs["route"])
			}
		})
	}
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	logs := &capHandler{}
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "rid-7")
	req = req.WithContext(logctx.Into(req.Context(), slog.New(logs)))
	Chain(h, RequestID(), Recover()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.Equal(t, "rid-7", env.Error.RequestID)
	require.NotContains(t, env.Error.Message, "boom")

	require.Equal(t, "handler_panic", logs.lastMsg)
	require.Equal(t, slog.LevelError, logs.lastLvl)
	require.Equal(t, "rid-7", logs.attrs["request_id"])
	require.Equal(t, "/panic", logs.attrs["route"])
	require.Equal(t, "boom", logs.attrs["reason"])
	require.Contains(t, logs.attrs["stack"], "runtime/debug.Stack")
}

func TestRecover_RouteFromChiAndAbortPassesThrough(t *testing.T) {
	logs := &capHandler{}
	r := chi.NewRouter()
	r.Use(Recover())
	r.Get("/api/comments/{id}", func(http.ResponseWriter, *http.Request) { panic("x") })
	r.Get("/abort", func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })

	req := httptest.NewRequest(http.MethodGet, "/api/comments/42", nil)
	req = req.WithContext(logctx.Into(req.Context(), slog.New(logs)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "/api/comments/{id}", logs.attrs["route"])

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
}

func TestLogging_RecordAndLevel(t *testing.T) {
	h := &capHandler{}
	logger := slog.New(h)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	req.Header.Set(HeaderRequestID, "rid-1")
	Chain(ok, RequestID(), Logging(logger)).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.Equal(t, "rid-1", h.attrs["request_id"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 5, h.attrs["bytes"])

	fail := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	Chain(fail, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, slog.LevelWarn, h.lastLvl)
}

func TestHTTPMetrics_ByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Delete("/api/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/comments/"+id, nil))
	}

	require.Equal(t, 3.0, testutil.ToFloat64(m.Requests().WithLabelValues(http.MethodDelete, "/api/comments/{id}", "204")))
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	sw := newStatusWriter(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, sw.code())

	_, _ = sw.Write([]byte("abcd"))
	require.Equal(t, http.StatusOK, sw.status)
	require.Equal(t, 4, sw.count)
	require.Same(t, sw, newStatusWriter(sw))
}
