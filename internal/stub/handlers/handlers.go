// Package handlers — REST-хендлеры стаба бэкенда комментариев.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

// Store — операции хранилища, нужные хендлерам (реализуется *storage.Memory).
type Store interface {
	Create(ctx context.Context, in storage.CreateInput) (models.Comment, error)
	List(ctx context.Context, articleID models.ID, viewer models.User, page, limit int) (models.Page, error)
	Update(ctx context.Context, id models.ID, editor models.User, content string) (models.Comment, error)
	Delete(ctx context.Context, id models.ID, actor models.User) error
	ToggleLike(ctx context.Context, id, userID models.ID) (models.LikeResult, error)
	Report(ctx context.Context, id models.ID, reporter models.User, in models.ReportRequest) error
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Store Store
}

func New(s Store) *Handlers {
	return &Handlers{Store: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
