package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	apierrors "github.com/pribylovaa/go-blog-comments/internal/stub/errors"
	"github.com/pribylovaa/go-blog-comments/internal/stub/middleware"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

// MaxPageSize — верхняя граница limit.
const MaxPageSize = 50

// ListComments — GET /articles/{article_id}/comments?page=N&limit=M.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	articleID := models.ID(chi.URLParam(r, "article_id"))
	if articleID.IsZero() {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	page, ok := intParam(r, "page", 1)
	if !ok || page < 1 {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	limit, ok := intParam(r, "limit", models.PageSize)
	if !ok || limit < 1 {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}
	limit = min(limit, MaxPageSize)

	viewer, _ := middleware.UserFrom(r.Context())

	out, err := h.Store.List(r.Context(), articleID, viewer, page, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// CreateComment — POST /comments (корень или ответ при parent_id).
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	var in models.CreateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	c, err := h.Store.Create(r.Context(), storage.CreateInput{
		ArticleID: in.ArticleID,
		ParentID:  in.ParentID,
		Author:    user,
		Content:   in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.CommentResponse{Comment: &c})
}

// UpdateComment — PUT /comments/{id}.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	var in models.UpdateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	c, err := h.Store.Update(r.Context(), models.ID(chi.URLParam(r, "id")), user, in.Content)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CommentResponse{Comment: &c})
}

// DeleteComment — DELETE /comments/{id}; 204 без тела.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	if err := h.Store.Delete(r.Context(), models.ID(chi.URLParam(r, "id")), user); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike — POST /comments/{id}/like.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	res, err := h.Store.ToggleLike(r.Context(), models.ID(chi.URLParam(r, "id")), user.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ReportComment — POST /comments/{id}/report.
func (h *Handlers) ReportComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	var in models.ReportRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Store.Report(r.Context(), models.ID(chi.URLParam(r, "id")), user, in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Report submitted."})
}

// intParam читает целый query-параметр; отсутствие — def.
func intParam(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}

	return n, true
}
