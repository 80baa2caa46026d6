// Package models содержит сущности и DTO клиента комментариев.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// PageSize — фиксированный размер страницы комментариев.
const PageSize = 10

// RoleAdmin — роль, дающая право удалять чужие комментарии.
const RoleAdmin = "admin"

// User — денормализованный снимок автора комментария.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

// DisplayName — "Имя Фамилия", если заданы, иначе username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}

	return u.Username
}

// IsAdmin — роль admin.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Comment — комментарий статьи или ответ на него.
// Важно:
//   - Content хранится как текст с ограниченной inline-разметкой, не HTML;
//   - Replies — ровно один уровень вложенности (у ответов replies пусты);
//   - LikesCount и UserLiked согласованы: лайк меняет счётчик ровно на 1;
//   - ReportsCount/ReportReasons приходят только в контексте модерации.
type Comment struct {
	ID            ID        `json:"id"`
	ArticleID     ID        `json:"article_id,omitempty"`
	ParentID      ID        `json:"parent_id,omitempty"`
	Content       string    `json:"content"`
	User          User      `json:"user"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
	LikesCount    int       `json:"likes_count"`
	UserLiked     bool      `json:"user_liked"`
	Replies       []Comment `json:"replies,omitempty"`
	ReportsCount  int       `json:"reports_count,omitempty"`
	ReportReasons []string  `json:"report_reasons,omitempty"`
}

// IsReply — комментарий является ответом.
func (c Comment) IsReply() bool { return !c.ParentID.IsZero() }

// UnmarshalJSON дополнительно понимает алиас user_has_liked.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	aux := struct {
		*plain
		UserHasLiked *bool `json:"user_has_liked"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.UserHasLiked != nil && !c.UserLiked {
		c.UserLiked = *aux.UserHasLiked
	}

	if c.LikesCount < 0 {
		c.LikesCount = 0
	}

	return nil
}

// Page — результат GET /api/articles/{id}/comments.
type Page struct {
	Comments      []Comment `json:"comments"`
	TotalComments int       `json:"total_comments"`
	HasMore       bool      `json:"has_more"`
}

// LikeResult — ответ переключателя лайка.
type LikeResult struct {
	LikesCount int  `json:"likes_count"`
	Liked      bool `json:"liked"`
}

// CreateCommentRequest — тело POST /api/comments (корень или ответ).
type CreateCommentRequest struct {
	Content   string `json:"content"`
	ArticleID ID     `json:"article_id"`
	ParentID  ID     `json:"parent_id,omitempty"`
}

// CommentResponse — обёртка {comment: ...} ответов create/edit.
type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

// UpdateCommentRequest — тело PUT /api/comments/{id}.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// ReportRequest — тело POST /api/comments/{id}/report.
type ReportRequest struct {
	Reason         ReportReason `json:"reason"`
	AdditionalInfo string       `json:"additional_info"`
}
