package item

import "github.com/pribylovaa/go-blog-comments/internal/models"

// Intent — запрос мутации, который элемент передаёт оркестратору.
// Сам элемент в сеть не ходит.
type Intent interface {
	// Target — id комментария, к которому относится действие
	// (для ответа — id родителя).
	Target() models.ID
}

// EditIntent — сохранить новый текст комментария.
type EditIntent struct {
	ID      models.ID
	Content string
}

// DeleteIntent — удалить комментарий.
type DeleteIntent struct {
	ID models.ID
}

// LikeIntent — переключить лайк.
type LikeIntent struct {
	ID models.ID
}

// ReplyIntent — опубликовать ответ на комментарий верхнего уровня.
type ReplyIntent struct {
	ParentID models.ID
	Content  string
}

// ReportIntent — открыть диалог жалобы на комментарий.
type ReportIntent struct {
	ID models.ID
}

func (i EditIntent) Target() models.ID   { return i.ID }
func (i DeleteIntent) Target() models.ID { return i.ID }
func (i LikeIntent) Target() models.ID   { return i.ID }
func (i ReplyIntent) Target() models.ID  { return i.ParentID }
func (i ReportIntent) Target() models.ID { return i.ID }
