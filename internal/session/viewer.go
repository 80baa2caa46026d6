// session описывает текущего зрителя и клиентские правила доступа к действиям
// над комментариями. Правила носят рекомендательный характер: окончательное
// решение всегда за бэкендом, отказ (401/403) обрабатывается как обычная ошибка.
package session

import "github.com/pribylovaa/go-blog-comments/internal/models"

// Viewer — текущий пользователь интерфейса.
type Viewer struct {
	User          models.User
	Authenticated bool
}

// Anonymous — неаутентифицированный зритель.
func Anonymous() Viewer { return Viewer{} }

// Authenticated — зритель с известным пользователем.
func Authenticated(u models.User) Viewer {
	return Viewer{User: u, Authenticated: true}
}

// IsAuthor — зритель является автором комментария.
func (v Viewer) IsAuthor(c models.Comment) bool {
	return v.Authenticated && !v.User.ID.IsZero() && v.User.ID == c.User.ID
}

// CanEdit — только автор.
func (v Viewer) CanEdit(c models.Comment) bool {
	return v.IsAuthor(c)
}

// CanDelete — автор или admin.
func (v Viewer) CanDelete(c models.Comment) bool {
	return v.Authenticated && (v.IsAuthor(c) || v.User.IsAdmin())
}

// CanReply — только на комментарии верхнего уровня (level == 0).
func (v Viewer) CanReply(level int) bool {
	return v.Authenticated && level == 0
}

// CanLike — любой аутентифицированный.
func (v Viewer) CanLike() bool {
	return v.Authenticated
}

// CanReport — аутентифицированный и не автор.
func (v Viewer) CanReport(c models.Comment) bool {
	return v.Authenticated && v.User.ID != c.User.ID
}
