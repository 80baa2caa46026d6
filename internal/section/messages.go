package section

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pribylovaa/go-blog-comments/internal/api"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/tree"
)

// Результаты сетевых вызовов. owner отсекает сообщения чужих (или закрытых) секций.

type loadedMsg struct {
	owner uint64
	seq   uint64
	page  int
	res   models.Page
	err   error
}

type createdMsg struct {
	owner   uint64
	comment models.Comment
	err     error
}

type repliedMsg struct {
	owner   uint64
	parent  models.ID
	comment models.Comment
	err     error
}

type editedMsg struct {
	owner   uint64
	id      models.ID
	comment models.Comment
	err     error
}

type deletedMsg struct {
	owner uint64
	id    models.ID
	err   error
}

type likedMsg struct {
	owner uint64
	id    models.ID
	res   models.LikeResult
	err   error
}

type reportedMsg struct {
	owner uint64
	id    models.ID
	err   error
}

type noticeExpiredMsg struct {
	owner uint64
	id    int
}

// Тексты успешных уведомлений.
const (
	msgReported = "Thanks! The comment was reported to moderators."
	msgDeleted  = "Comment deleted."
)

// Update применяет результат сетевого вызова. Сообщения, не относящиеся к
// секции, и результаты после Close игнорируются (nil).
func (s *Section) Update(msg tea.Msg) tea.Cmd {
	if s.closed {
		return nil
	}

	switch msg := msg.(type) {
	case loadedMsg:
		if msg.owner == s.owner {
			return s.onLoaded(msg)
		}
	case createdMsg:
		if msg.owner == s.owner {
			return s.onCreated(msg)
		}
	case repliedMsg:
		if msg.owner == s.owner {
			return s.onReplied(msg)
		}
	case editedMsg:
		if msg.owner == s.owner {
			return s.onEdited(msg)
		}
	case deletedMsg:
		if msg.owner == s.owner {
			return s.onDeleted(msg)
		}
	case likedMsg:
		if msg.owner == s.owner {
			return s.onLiked(msg)
		}
	case reportedMsg:
		if msg.owner == s.owner {
			return s.onReported(msg)
		}
	case noticeExpiredMsg:
		if msg.owner == s.owner {
			s.Dismiss(msg.id)
		}
	}

	return nil
}

func (s *Section) onLoaded(msg loadedMsg) tea.Cmd {
	// Ответ на запрос, который перекрыл Reload.
	if msg.seq != s.loadSeq {
		return nil
	}

	s.status.finish("", OpLoad, msg.err)

	if msg.err != nil {
		s.logFailure(s.ctx, OpLoad, "", msg.err)
		return s.notify(Error, OpLoad, api.UserMessage(msg.err))
	}

	if msg.page <= 1 {
		comments := msg.res.Comments
		if comments == nil {
			comments = []models.Comment{}
		}
		s.comments = comments
		s.syncItems()
	} else {
		s.apply(tree.Action{Kind: tree.Append, Page: msg.res.Comments})
	}

	s.page = msg.page
	s.loaded = true
	s.hasMore = msg.res.HasMore
	s.setTotal(msg.res.TotalComments)

	s.log.Debug("page loaded", "page", msg.page, "count", len(msg.res.Comments), "has_more", msg.res.HasMore)
	return nil
}

func (s *Section) onCreated(msg createdMsg) tea.Cmd {
	s.status.finish("", OpCreate, msg.err)

	if msg.err != nil {
		s.logFailure(s.ctx, OpCreate, "", msg.err)
		return s.notify(Error, OpCreate, api.UserMessage(msg.err))
	}

	c := msg.comment
	c.ParentID = ""
	s.apply(tree.Action{Kind: tree.AddRoot, Comment: c})
	s.setTotal(s.total + 1)

	s.draft = ""
	s.draftErr = nil
	return nil
}

func (s *Section) onReplied(msg repliedMsg) tea.Cmd {
	s.status.finish(msg.parent, OpReply, msg.err)

	it, _ := s.Item(msg.parent)

	if msg.err != nil {
		s.logFailure(s.ctx, OpReply, msg.parent, msg.err)
		if it != nil {
			it.ReplyFailed(msg.err)
		}
		return s.notify(Error, OpReply, api.UserMessage(msg.err))
	}

	c := msg.comment
	c.ParentID = msg.parent
	s.apply(tree.Action{Kind: tree.AddReply, ParentID: msg.parent, Comment: c})

	if it != nil {
		it.ReplySucceeded()
	}

	return nil
}

func (s *Section) onEdited(msg editedMsg) tea.Cmd {
	s.status.finish(msg.id, OpEdit, msg.err)

	it, _ := s.Item(msg.id)

	if msg.err != nil {
		s.logFailure(s.ctx, OpEdit, msg.id, msg.err)
		if it != nil {
			it.EditFailed(msg.err)
		}
		return s.notify(Error, OpEdit, api.UserMessage(msg.err))
	}

	c := msg.comment
	if c.ID.IsZero() {
		c.ID = msg.id
	}
	s.apply(tree.Action{Kind: tree.Replace, Comment: c})

	if it != nil {
		if updated, _, ok := tree.Find(s.comments, msg.id); ok {
			it.EditSucceeded(updated)
		}
	}

	return nil
}

func (s *Section) onDeleted(msg deletedMsg) tea.Cmd {
	s.status.finish(msg.id, OpDelete, msg.err)

	if msg.err != nil {
		s.logFailure(s.ctx, OpDelete, msg.id, msg.err)
		return s.notify(Error, OpDelete, api.UserMessage(msg.err))
	}

	_, level, ok := tree.Find(s.comments, msg.id)
	s.apply(tree.Action{Kind: tree.Remove, ID: msg.id})

	// Ответы в общий счётчик не входят.
	if ok && level == 0 {
		s.setTotal(s.total - 1)
	}

	return s.notify(Info, OpDelete, msgDeleted)
}

func (s *Section) onLiked(msg likedMsg) tea.Cmd {
	s.status.finish(msg.id, OpLike, msg.err)

	snap, hadSnap := s.likes[msg.id]
	delete(s.likes, msg.id)

	if msg.err != nil {
		s.logFailure(s.ctx, OpLike, msg.id, msg.err)
		if hadSnap {
			s.apply(tree.Action{Kind: tree.UpdateLike, ID: msg.id, Likes: snap.likes, Liked: snap.liked})
		}
		return s.notify(Error, OpLike, api.UserMessage(msg.err))
	}

	s.apply(tree.Action{Kind: tree.UpdateLike, ID: msg.id, Likes: msg.res.LikesCount, Liked: msg.res.Liked})
	return nil
}

func (s *Section) onReported(msg reportedMsg) tea.Cmd {
	s.status.finish(msg.id, OpReport, msg.err)

	sameTarget := s.dialog.IsOpen() && s.dialog.Target() == msg.id

	if msg.err != nil {
		s.logFailure(s.ctx, OpReport, msg.id, msg.err)
		if sameTarget {
			s.dialog.Failed(msg.err)
		}
		return s.notify(Error, OpReport, api.UserMessage(msg.err))
	}

	if sameTarget {
		s.dialog.Succeeded()
	}

	return s.notify(Info, OpReport, msgReported)
}
