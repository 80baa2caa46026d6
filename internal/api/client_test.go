package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

// newTestClient поднимает httptest-сервер с handler и клиент к нему.
func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, SessionToken: token, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Options{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestListComments_RequestShapeAndDecode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/articles/7/comments", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		ck, err := r.Cookie("session")
		require.NoError(t, err)
		require.Equal(t, "tok", ck.Value)

		_, _ = io.WriteString(w, `{"comments":[{"id":1,"content":"a","user":{"id":5,"username":"ann"},"likes_count":2,"user_liked":true}],"total_comments":11,"has_more":false}`)
	})

	page, err := c.ListComments(context.Background(), "7", 2)
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	require.Equal(t, models.ID("1"), page.Comments[0].ID)
	require.Equal(t, 11, page.TotalComments)
	require.False(t, page.HasMore)
}

func TestListComments_NullCommentsBecomesEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("session")
		require.ErrorIs(t, err, http.ErrNoCookie)
		_, _ = io.WriteString(w, `{"comments":null,"total_comments":0,"has_more":false}`)
	})

	page, err := c.ListComments(context.Background(), "7", 0)
	require.NoError(t, err)
	require.NotNil(t, page.Comments)
	require.Empty(t, page.Comments)
}

func TestCreateComment_BodyAndResponse(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/comments", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"content":"Thanks!","article_id":7,"parent_id":3}`, string(raw))

		writeJSON(w, http.StatusCreated, map[string]any{
			"comment": map[string]any{"id": 9, "parent_id": 3, "content": "Thanks!", "user": map[string]any{"id": 1}},
		})
	})

	got, err := c.CreateComment(context.Background(), models.CreateCommentRequest{
		Content: "Thanks!", ArticleID: "7", ParentID: "3",
	})
	require.NoError(t, err)
	require.Equal(t, models.ID("9"), got.ID)
	require.Equal(t, models.ID("3"), got.ParentID)
}

func TestCreateComment_ValidationBlocksRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.CreateComment(context.Background(), models.CreateCommentRequest{Content: "  ", ArticleID: "1"})
	require.ErrorIs(t, err, models.ErrEmptyContent)

	_, err = c.UpdateComment(context.Background(), "1", strings.Repeat("x", models.MaxContentLength+1))
	require.ErrorIs(t, err, models.ErrContentTooLong)

	require.Zero(t, calls.Load())
}

func TestCreateComment_MissingCommentIsDecodeError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := c.CreateComment(context.Background(), models.CreateCommentRequest{Content: "x", ArticleID: "1"})
	require.ErrorIs(t, err, ErrDecode)
}

func TestUpdateDeleteLikeReport_Paths(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/comments/5":
			raw, _ := io.ReadAll(r.Body)
			require.JSONEq(t, `{"content":"edited"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]any{"comment": map[string]any{"id": 5, "content": "edited (server)"}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/comments/5":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/api/comments/5/like":
			writeJSON(w, http.StatusOK, map[string]any{"likes_count": 4, "liked": true})
		case r.Method == http.MethodPost && r.URL.Path == "/api/comments/5/report":
			raw, _ := io.ReadAll(r.Body)
			require.JSONEq(t, `{"reason":"spam","additional_info":"ads"}`, string(raw))
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	ctx := context.Background()

	edited, err := c.UpdateComment(ctx, "5", "edited")
	require.NoError(t, err)
	require.Equal(t, "edited (server)", edited.Content)

	require.NoError(t, c.DeleteComment(ctx, "5"))

	like, err := c.ToggleLike(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, models.LikeResult{LikesCount: 4, Liked: true}, like)

	require.NoError(t, c.ReportComment(ctx, "5", models.ReportRequest{Reason: models.ReasonSpam, AdditionalInfo: "ads"}))
	require.ErrorIs(t, c.ReportComment(ctx, "5", models.ReportRequest{Reason: "meh"}), models.ErrUnknownReason)
}

func TestIDs_PathsAndBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		id          models.ID
		wantEscaped string // сегмент пути так, как он идёт по сети
		wantJSON    string // id в теле запроса
	}{
		{name: "numeric", id: "7", wantEscaped: "7", wantJSON: `7`},
		{name: "zero padded", id: "007", wantEscaped: "007", wantJSON: `"007"`},
		{name: "uuid", id: "3f2c9a1e-8d4b-4c1a-9e2f-6b7d8c9a0b1c", wantEscaped: "3f2c9a1e-8d4b-4c1a-9e2f-6b7d8c9a0b1c", wantJSON: `"3f2c9a1e-8d4b-4c1a-9e2f-6b7d8c9a0b1c"`},
		{name: "space", id: "my post", wantEscaped: "my%20post", wantJSON: `"my post"`},
		{name: "non-ascii", id: "статья", wantEscaped: "%D1%81%D1%82%D0%B0%D1%82%D1%8C%D1%8F", wantJSON: `"статья"`},
		{name: "slash stays in one segment", id: "a/b", wantEscaped: "a%2Fb", wantJSON: `"a/b"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodGet:
					require.Equal(t, "/api/articles/"+tc.id.String()+"/comments", r.URL.Path)
					require.Equal(t, "/api/articles/"+tc.wantEscaped+"/comments", r.URL.EscapedPath())
					writeJSON(w, http.StatusOK, map[string]any{"comments": []any{}})
				case http.MethodPost:
					require.Equal(t, "/api/comments", r.URL.Path)
					raw, _ := io.ReadAll(r.Body)
					require.JSONEq(t, `{"content":"hi","article_id":`+tc.wantJSON+`,"parent_id":`+tc.wantJSON+`}`, string(raw))
					writeJSON(w, http.StatusCreated, map[string]any{"comment": map[string]any{"id": tc.id.String(), "content": "hi"}})
				case http.MethodPut:
					require.Equal(t, "/api/comments/"+tc.id.String(), r.URL.Path)
					require.Equal(t, "/api/comments/"+tc.wantEscaped, r.URL.EscapedPath())
					writeJSON(w, http.StatusOK, map[string]any{"comment": map[string]any{"id": tc.id.String(), "content": "edited"}})
				case http.MethodDelete:
					require.Equal(t, "/api/comments/"+tc.wantEscaped, r.URL.EscapedPath())
					w.WriteHeader(http.StatusNoContent)
				default:
					t.Errorf("unexpected %s %s", r.Method, r.URL.EscapedPath())
					w.WriteHeader(http.StatusTeapot)
				}
			})

			ctx := context.Background()

			_, err := c.ListComments(ctx, tc.id, 1)
			require.NoError(t, err)

			created, err := c.CreateComment(ctx, models.CreateCommentRequest{Content: "hi", ArticleID: tc.id, ParentID: tc.id})
			require.NoError(t, err)
			require.Equal(t, tc.id, created.ID)

			edited, err := c.UpdateComment(ctx, tc.id, "edited")
			require.NoError(t, err)
			require.Equal(t, tc.id, edited.ID)

			require.NoError(t, c.DeleteComment(ctx, tc.id))
		})
	}
}

func TestBaseURLPathPrefixIsKept(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/blog%20v2/api/comments/my%20post", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/blog%20v2/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	require.NoError(t, c.DeleteComment(context.Background(), "my post"))
}

func TestServerErrors_AllBodyShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		code    string
	}{
		{"flat message", http.StatusBadRequest, `{"message":"Content is required"}`, "Content is required", "invalid_argument"},
		{"error string", http.StatusForbidden, `{"error":"Not your comment"}`, "Not your comment", "permission_denied"},
		{"envelope", http.StatusNotFound, `{"error":{"code":"not_found","message":"comment not found","request_id":"rid-1"}}`, "comment not found", "not_found"},
		{"empty body", http.StatusInternalServerError, ``, "", "internal"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "", "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := c.DeleteComment(context.Background(), "1")
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.wantMsg, apiErr.Message)
			require.Equal(t, tt.code, apiErr.Code)
			require.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestTransportFailure_IsErrTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url})
	require.NoError(t, err)

	_, err = c.ToggleLike(context.Background(), "1")
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, msgNetwork, UserMessage(err))
}

func TestSetSession_SignOutDropsCookie(t *testing.T) {
	t.Parallel()

	var seen atomic.Value
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("session")
		seen.Store(err == nil)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteComment(context.Background(), "1"))
	require.Equal(t, true, seen.Load())

	c.SetSession("")
	require.NoError(t, c.DeleteComment(context.Background(), "1"))
	require.Equal(t, false, seen.Load())
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", UserMessage(nil))
	require.Equal(t, "boom", UserMessage(&Error{Status: 500, Message: "boom"}))
	require.Equal(t, msgForbidden, UserMessage(&Error{Status: 403}))
	require.Equal(t, msgNotFound, UserMessage(&Error{Status: 404}))
	require.Equal(t, msgConflict, UserMessage(&Error{Status: 409}))
	require.Equal(t, msgSignIn, UserMessage(&Error{Status: 401}))
	require.Equal(t, msgGeneric, UserMessage(&Error{Status: 500}))
	require.Equal(t, msgTooLong, UserMessage(models.ErrContentTooLong))
	require.Equal(t, msgGeneric, UserMessage(errors.New("weird")))
}
