// Package storage — in-memory хранилище комментариев стаба бэкенда.
//
// Контракт повторяет REST-бэкенд: корни статьи отдаются сначала новые,
// ответы внутри корня — в порядке создания, вложенность ровно один уровень.
// total_comments считает только корни.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

var (
	// ErrNotFound — комментарий отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrMaxDepthExceeded — ответ на ответ.
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrForbidden — действие не разрешено пользователю.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict — пользователь уже пожаловался на комментарий.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument — неверные входные параметры.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CreateInput — создание корня (ParentID пуст) или ответа.
// Для ответа ArticleID можно не передавать: наследуется от родителя.
type CreateInput struct {
	ArticleID models.ID
	ParentID  models.ID
	Author    models.User
	Content   string
}

type record struct {
	comment models.Comment
	seq     int64
	likes   map[models.ID]struct{}
	reports map[models.ID]models.ReportReason
}

// Memory — потокобезопасное хранилище в памяти.
type Memory struct {
	mu   sync.RWMutex
	seq  int64
	byID map[models.ID]*record
	now  func() time.Time
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		byID: make(map[models.ID]*record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create сохраняет комментарий и возвращает его с присвоенным id.
func (m *Memory) Create(ctx context.Context, in CreateInput) (models.Comment, error) {
	const op = "storage/memory/Create"

	if err := ctx.Err(); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := models.ValidateContent(in.Content); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	if in.Author.ID.IsZero() {
		return models.Comment{}, fmt.Errorf("%s: %w: empty author", op, ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !in.ParentID.IsZero() {
		parent, ok := m.byID[in.ParentID]
		if !ok {
			return models.Comment{}, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		}

		if parent.comment.IsReply() {
			return models.Comment{}, fmt.Errorf("%s: %w", op, ErrMaxDepthExceeded)
		}

		if in.ArticleID.IsZero() {
			in.ArticleID = parent.comment.ArticleID
		}

		if in.ArticleID != parent.comment.ArticleID {
			return models.Comment{}, fmt.Errorf("%s: %w: parent belongs to another article", op, ErrInvalidArgument)
		}
	}

	if in.ArticleID.IsZero() {
		return models.Comment{}, fmt.Errorf("%s: %w: empty article_id", op, ErrInvalidArgument)
	}

	m.seq++
	now := m.now()
	rec := &record{
		seq: m.seq,
		comment: models.Comment{
			ID:        models.ID(strconv.FormatInt(m.seq, 10)),
			ArticleID: in.ArticleID,
			ParentID:  in.ParentID,
			Content:   strings.TrimSpace(in.Content),
			User:      in.Author,
			CreatedAt: now,
		},
		likes:   make(map[models.ID]struct{}),
		reports: make(map[models.ID]models.ReportReason),
	}
	m.byID[rec.comment.ID] = rec

	return m.view(rec, in.Author), nil
}

// List возвращает страницу корней статьи (сначала новые) вместе с ответами.
// viewer определяет user_liked; модераторские поля видны только admin.
func (m *Memory) List(ctx context.Context, articleID models.ID, viewer models.User, page, limit int) (models.Page, error) {
	const op = "storage/memory/List"

	if err := ctx.Err(); err != nil {
		return models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	if page < 1 || limit < 1 {
		return models.Page{}, fmt.Errorf("%s: %w: page and limit must be positive", op, ErrInvalidArgument)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var roots []*record
	replies := make(map[models.ID][]*record)
	for _, rec := range m.byID {
		if rec.comment.ArticleID != articleID {
			continue
		}

		if rec.comment.IsReply() {
			replies[rec.comment.ParentID] = append(replies[rec.comment.ParentID], rec)
			continue
		}

		roots = append(roots, rec)
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].seq > roots[j].seq })

	out := models.Page{Comments: []models.Comment{}, TotalComments: len(roots)}

	from := (page - 1) * limit
	if from >= len(roots) {
		return out, nil
	}

	to := min(from+limit, len(roots))
	out.HasMore = to < len(roots)

	for _, root := range roots[from:to] {
		c := m.view(root, viewer)

		rs := replies[root.comment.ID]
		sort.Slice(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
		for _, r := range rs {
			c.Replies = append(c.Replies, m.view(r, viewer))
		}

		out.Comments = append(out.Comments, c)
	}

	return out, nil
}

// Update меняет текст. Править может только автор.
func (m *Memory) Update(ctx context.Context, id models.ID, editor models.User, content string) (models.Comment, error) {
	const op = "storage/memory/Update"

	if err := ctx.Err(); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := models.ValidateContent(content); err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return models.Comment{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if rec.comment.User.ID != editor.ID {
		return models.Comment{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	rec.comment.Content = strings.TrimSpace(content)
	rec.comment.UpdatedAt = m.now()

	return m.view(rec, editor), nil
}

// Delete удаляет комментарий (корень — вместе с ответами). Автор или admin.
func (m *Memory) Delete(ctx context.Context, id models.ID, actor models.User) error {
	const op = "storage/memory/Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if rec.comment.User.ID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	delete(m.byID, id)

	if !rec.comment.IsReply() {
		for rid, r := range m.byID {
			if r.comment.ParentID == id {
				delete(m.byID, rid)
			}
		}
	}

	return nil
}

// ToggleLike переключает лайк пользователя и возвращает итоговое состояние.
func (m *Memory) ToggleLike(ctx context.Context, id, userID models.ID) (models.LikeResult, error) {
	const op = "storage/memory/ToggleLike"

	if err := ctx.Err(); err != nil {
		return models.LikeResult{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return models.LikeResult{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	_, liked := rec.likes[userID]
	if liked {
		delete(rec.likes, userID)
	} else {
		rec.likes[userID] = struct{}{}
	}

	return models.LikeResult{LikesCount: len(rec.likes), Liked: !liked}, nil
}

// Report регистрирует жалобу. На свой комментарий жаловаться нельзя,
// повторная жалоба того же пользователя — ErrConflict.
func (m *Memory) Report(ctx context.Context, id models.ID, reporter models.User, in models.ReportRequest) error {
	const op = "storage/memory/Report"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !in.Reason.Valid() {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, models.ErrUnknownReason)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if rec.comment.User.ID == reporter.ID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if _, dup := rec.reports[reporter.ID]; dup {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}

	rec.reports[reporter.ID] = in.Reason
	return nil
}

// view собирает представление комментария для viewer. Вызывается под mu.
func (m *Memory) view(rec *record, viewer models.User) models.Comment {
	c := rec.comment
	c.Replies = nil
	c.LikesCount = len(rec.likes)
	_, c.UserLiked = rec.likes[viewer.ID]

	if viewer.IsAdmin() && len(rec.reports) > 0 {
		c.ReportsCount = len(rec.reports)

		seen := make(map[models.ReportReason]struct{}, len(rec.reports))
		for _, r := range rec.reports {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			c.ReportReasons = append(c.ReportReasons, string(r))
		}
		sort.Strings(c.ReportReasons)
	}

	return c
}
