// Package tree — чистый редьюсер дерева комментариев.
//
// Дерево двухуровневое: верхний уровень и ответы (Replies) ровно одного уровня.
// Reduce никогда не изменяет входной срез: затронутые узлы и срезы копируются,
// остальные разделяются с входом.
package tree

import "github.com/pribylovaa/go-blog-comments/internal/models"

// Kind — тип действия над деревом.
type Kind int

const (
	// AddRoot — новый комментарий верхнего уровня, добавляется в начало.
	AddRoot Kind = iota + 1
	// AddReply — новый ответ, дописывается в конец Replies родителя.
	AddReply
	// Replace — замена комментария по id каноническим объектом сервера.
	Replace
	// Remove — удаление по id (с верхнего уровня вместе с ответами либо из Replies).
	Remove
	// UpdateLike — новые LikesCount/UserLiked по id.
	UpdateLike
	// Append — следующая страница дописывается в конец.
	Append
)

func (k Kind) String() string {
	switch k {
	case AddRoot:
		return "add_root"
	case AddReply:
		return "add_reply"
	case Replace:
		return "replace"
	case Remove:
		return "remove"
	case UpdateLike:
		return "update_like"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// Action — действие редьюсера. Используемые поля зависят от Kind:
//   - AddRoot, Replace: Comment;
//   - AddReply: ParentID, Comment;
//   - Remove: ID;
//   - UpdateLike: ID, Likes, Liked;
//   - Append: Page.
type Action struct {
	Kind     Kind
	ID       models.ID
	ParentID models.ID
	Comment  models.Comment
	Likes    int
	Liked    bool
	Page     []models.Comment
}

// Reduce применяет действие к списку и возвращает новый список.
// Действие над отсутствующим id возвращает вход без изменений.
func Reduce(list []models.Comment, a Action) []models.Comment {
	switch a.Kind {
	case AddRoot:
		out := make([]models.Comment, 0, len(list)+1)
		out = append(out, a.Comment)
		return append(out, list...)

	case AddReply:
		parent := a.ParentID
		if parent.IsZero() {
			parent = a.Comment.ParentID
		}

		return patch(list, parent, false, func(c models.Comment) models.Comment {
			replies := make([]models.Comment, 0, len(c.Replies)+1)
			replies = append(replies, c.Replies...)
			reply := a.Comment
			reply.Replies = nil
			c.Replies = append(replies, reply)
			return c
		})

	case Replace:
		return patch(list, a.Comment.ID, true, func(c models.Comment) models.Comment {
			next := a.Comment
			// Ответы приходят отдельно от PUT: сохраняем локальные.
			if len(next.Replies) == 0 {
				next.Replies = c.Replies
			}
			return next
		})

	case Remove:
		return remove(list, a.ID)

	case UpdateLike:
		likes := a.Likes
		if likes < 0 {
			likes = 0
		}

		return patch(list, a.ID, true, func(c models.Comment) models.Comment {
			c.LikesCount = likes
			c.UserLiked = a.Liked
			return c
		})

	case Append:
		if len(a.Page) == 0 {
			return list
		}

		out := make([]models.Comment, 0, len(list)+len(a.Page))
		out = append(out, list...)
		for _, c := range a.Page {
			// Страницы могут сдвинуться из-за новых комментариев: дубли пропускаем.
			if Contains(out, c.ID) {
				continue
			}
			out = append(out, c)
		}
		return out
	}

	return list
}

// patch применяет fn к комментарию id. deep — искать и среди ответов.
func patch(list []models.Comment, id models.ID, deep bool, fn func(models.Comment) models.Comment) []models.Comment {
	if id.IsZero() {
		return list
	}

	for i := range list {
		if list[i].ID == id {
			out := clone(list)
			out[i] = fn(list[i])
			return out
		}
	}

	if !deep {
		return list
	}

	for i := range list {
		for j := range list[i].Replies {
			if list[i].Replies[j].ID != id {
				continue
			}

			replies := clone(list[i].Replies)
			replies[j] = fn(replies[j])
			replies[j].Replies = nil

			out := clone(list)
			out[i].Replies = replies
			return out
		}
	}

	return list
}

// remove убирает id с верхнего уровня, а если его там нет, то из Replies каждого
// комментария верхнего уровня.
func remove(list []models.Comment, id models.ID) []models.Comment {
	if id.IsZero() {
		return list
	}

	for i := range list {
		if list[i].ID == id {
			out := make([]models.Comment, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}

	var out []models.Comment
	for i := range list {
		if !containsReply(list[i], id) {
			continue
		}

		if out == nil {
			out = clone(list)
		}

		kept := make([]models.Comment, 0, len(list[i].Replies))
		for _, r := range list[i].Replies {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		out[i].Replies = kept
	}

	if out == nil {
		return list
	}

	return out
}

func containsReply(c models.Comment, id models.ID) bool {
	for _, r := range c.Replies {
		if r.ID == id {
			return true
		}
	}

	return false
}

func clone(list []models.Comment) []models.Comment {
	out := make([]models.Comment, len(list))
	copy(out, list)
	return out
}

// Find ищет комментарий по id. level: 0 — верхний уровень, 1 — ответ.
func Find(list []models.Comment, id models.ID) (models.Comment, int, bool) {
	if id.IsZero() {
		return models.Comment{}, 0, false
	}

	for _, c := range list {
		if c.ID == id {
			return c, 0, true
		}
	}

	for _, c := range list {
		for _, r := range c.Replies {
			if r.ID == id {
				return r, 1, true
			}
		}
	}

	return models.Comment{}, 0, false
}

// Contains — есть ли id где-либо в дереве.
func Contains(list []models.Comment, id models.ID) bool {
	_, _, ok := Find(list, id)
	return ok
}

// Count — число узлов дерева (комментарии верхнего уровня и ответы).
func Count(list []models.Comment) int {
	n := len(list)
	for _, c := range list {
		n += len(c.Replies)
	}

	return n
}
