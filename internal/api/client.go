// api — HTTP-клиент REST-бэкенда комментариев.
//
// Все запросы идут JSON-over-HTTP с cookie сессии (аналог credentials: include).
// Ошибки:
//   - валидация текста (models.ErrEmptyContent/ErrContentTooLong) — запрос не отправляется;
//   - ErrTransport — запрос не завершился (сеть, таймаут, отмена);
//   - *Error — сервер ответил не-2xx (Message — текст сервера, если был);
//   - ErrDecode — 2xx с телом вне контракта.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-blog-comments/internal/api/transport"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/session"
)

// Options — параметры клиента.
type Options struct {
	BaseURL      string
	SessionToken string
	CookieName   string // по умолчанию session.CookieName
	Timeout      time.Duration
	Logger       *slog.Logger
	Registerer   prometheus.Registerer
	// Transport — базовый RoundTripper (по умолчанию http.DefaultTransport).
	Transport http.RoundTripper
}

// Client — REST-клиент комментариев.
type Client struct {
	base *url.URL
	http *http.Client
	jar  http.CookieJar

	cookieName string
}

// New собирает клиент: cookie jar с сессией и цепочку RequestID -> Timeout -> Logging -> Metrics.
func New(opts Options) (*Client, error) {
	const op = "api/New"

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: cookie jar: %w", op, err)
	}

	c := &Client{
		base:       base,
		jar:        jar,
		cookieName: opts.CookieName,
	}

	if c.cookieName == "" {
		c.cookieName = session.CookieName
	}

	c.SetSession(opts.SessionToken)

	rt := transport.Chain(opts.Transport,
		transport.RequestID(),
		transport.Timeout(opts.Timeout),
		transport.Logging(opts.Logger),
		transport.NewMetrics(opts.Registerer).Middleware(),
	)

	c.http = &http.Client{Transport: rt, Jar: jar}
	return c, nil
}

// SetSession заменяет cookie сессии (пустой токен — выход).
func (c *Client) SetSession(token string) {
	ck := &http.Cookie{Name: c.cookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}

	c.jar.SetCookies(c.base, []*http.Cookie{ck})
}

// ListComments — GET /api/articles/{articleId}/comments?page=N&limit=10.
func (c *Client) ListComments(ctx context.Context, articleID models.ID, page int) (models.Page, error) {
	const op = "comments.list"

	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(models.PageSize))

	var out models.Page
	path := "/api/articles/" + url.PathEscape(articleID.String()) + "/comments"
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, &out); err != nil {
		return models.Page{}, err
	}

	if out.Comments == nil {
		out.Comments = []models.Comment{}
	}

	return out, nil
}

// CreateComment — POST /api/comments (корень или ответ при непустом ParentID).
func (c *Client) CreateComment(ctx context.Context, in models.CreateCommentRequest) (models.Comment, error) {
	const op = "comments.create"

	if err := models.ValidateContent(in.Content); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	var out models.CommentResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/comments", nil, in, &out); err != nil {
		return models.Comment{}, err
	}

	if out.Comment == nil || out.Comment.ID.IsZero() {
		return models.Comment{}, fmt.Errorf("%s: %w", op, ErrDecode)
	}

	return *out.Comment, nil
}

// UpdateComment — PUT /api/comments/{id}; возвращает каноническую версию с сервера.
func (c *Client) UpdateComment(ctx context.Context, id models.ID, content string) (models.Comment, error) {
	const op = "comments.update"

	if err := models.ValidateContent(content); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	var out models.CommentResponse
	if err := c.do(ctx, op, http.MethodPut, commentPath(id), nil, models.UpdateCommentRequest{Content: content}, &out); err != nil {
		return models.Comment{}, err
	}

	if out.Comment == nil || out.Comment.ID.IsZero() {
		return models.Comment{}, fmt.Errorf("%s: %w", op, ErrDecode)
	}

	return *out.Comment, nil
}

// DeleteComment — DELETE /api/comments/{id}; тело ответа игнорируется.
func (c *Client) DeleteComment(ctx context.Context, id models.ID) error {
	return c.do(ctx, "comments.delete", http.MethodDelete, commentPath(id), nil, nil, nil)
}

// ToggleLike — POST /api/comments/{id}/like.
func (c *Client) ToggleLike(ctx context.Context, id models.ID) (models.LikeResult, error) {
	var out models.LikeResult
	if err := c.do(ctx, "comments.like", http.MethodPost, commentPath(id)+"/like", nil, nil, &out); err != nil {
		return models.LikeResult{}, err
	}

	if out.LikesCount < 0 {
		out.LikesCount = 0
	}

	return out, nil
}

// ReportComment — POST /api/comments/{id}/report.
func (c *Client) ReportComment(ctx context.Context, id models.ID, in models.ReportRequest) error {
	const op = "comments.report"

	if !in.Reason.Valid() {
		return fmt.Errorf("%s: %w", op, models.ErrUnknownReason)
	}

	return c.do(ctx, op, http.MethodPost, commentPath(id)+"/report", nil, in, nil)
}

func commentPath(id models.ID) string {
	return "/api/comments/" + url.PathEscape(id.String())
}

// do выполняет запрос и декодирует 2xx-ответ в out (если out != nil).
// path приходит уже экранированным по сегментам (url.PathEscape).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	escaped := strings.TrimRight(c.base.EscapedPath(), "/") + path
	decoded, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("%s: build path: %w", op, err)
	}

	// RawPath хранит сегменты как есть: "a%2Fb" не превращается в два сегмента,
	// а "my%20post" не экранируется повторно.
	u := *c.base
	u.Path, u.RawPath = decoded, escaped
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(transport.WithOp(ctx, op), method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", op, parseError(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w: empty body", op, ErrDecode)
		}

		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
		}

		return fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}

	return nil
}
