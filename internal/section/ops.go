package section

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pribylovaa/go-blog-comments/internal/api"
	"github.com/pribylovaa/go-blog-comments/internal/item"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/pkg/log"
	"github.com/pribylovaa/go-blog-comments/internal/report"
	"github.com/pribylovaa/go-blog-comments/internal/tree"
)

// Init загружает первую страницу.
func (s *Section) Init() tea.Cmd {
	return s.load(1)
}

// Reload перечитывает первую страницу и заменяет список
// (например, после входа: user_liked зависит от зрителя).
// Незавершённая подгрузка при этом устаревает.
func (s *Section) Reload() tea.Cmd {
	s.status.finish("", OpLoad, nil)
	return s.load(1)
}

// LoadMore дописывает следующую страницу. Игнорируется, пока идёт загрузка
// или сервер сообщил, что страниц больше нет.
func (s *Section) LoadMore() tea.Cmd {
	if !s.loaded || !s.hasMore {
		return nil
	}

	return s.load(s.page + 1)
}

func (s *Section) load(page int) tea.Cmd {
	if s.closed || !s.status.begin("", OpLoad) {
		return nil
	}

	s.loadSeq++
	seq := s.loadSeq
	ctx, backend, article, owner := s.ctx, s.backend, s.article, s.owner

	return func() tea.Msg {
		res, err := backend.ListComments(ctx, article, page)
		return loadedMsg{owner: owner, seq: seq, page: page, res: res, err: err}
	}
}

// Submit публикует новый комментарий верхнего уровня из черновика.
// Ошибка валидации остаётся в DraftError, запрос не отправляется.
func (s *Section) Submit() tea.Cmd {
	if s.closed {
		return nil
	}

	if !s.viewer.Authenticated {
		return s.notify(Error, OpCreate, api.UserMessage(&api.Error{Status: 401}))
	}

	content := s.draft
	if err := models.ValidateContent(content); err != nil {
		s.draftErr = err
		return nil
	}

	if !s.status.begin("", OpCreate) {
		return nil
	}
	s.draftErr = nil

	req := models.CreateCommentRequest{Content: content, ArticleID: s.article}
	ctx, backend, owner := s.ctx, s.backend, s.owner

	return func() tea.Msg {
		c, err := backend.CreateComment(ctx, req)
		return createdMsg{owner: owner, comment: c, err: err}
	}
}

// Dispatch исполняет намерение элемента или диалога жалобы.
// Запрещённые зрителю действия и повторы во время выполнения игнорируются.
func (s *Section) Dispatch(in item.Intent) tea.Cmd {
	if s.closed || in == nil {
		return nil
	}

	switch in := in.(type) {
	case item.LikeIntent:
		return s.like(in.ID)
	case item.EditIntent:
		return s.edit(in)
	case item.DeleteIntent:
		return s.remove(in.ID)
	case item.ReplyIntent:
		return s.reply(in)
	case item.ReportIntent:
		return s.openReport(in.ID)
	case report.Intent:
		return s.report(in)
	}

	s.log.Warn("unknown intent", "target", in.Target().String())
	return nil
}

// SubmitReport отправляет форму открытого диалога жалобы.
func (s *Section) SubmitReport() tea.Cmd {
	in, ok, err := s.dialog.Submit()
	if err != nil || !ok {
		return nil
	}

	return s.Dispatch(in)
}

func (s *Section) like(id models.ID) tea.Cmd {
	c, _, ok := tree.Find(s.comments, id)
	if !ok || !s.viewer.CanLike() {
		return nil
	}

	// Второй клик, пока первый запрос в полёте, ничего не делает.
	if !s.status.begin(id, OpLike) {
		return nil
	}

	s.likes[id] = likeSnapshot{likes: c.LikesCount, liked: c.UserLiked}

	likes := c.LikesCount + 1
	if c.UserLiked {
		likes = c.LikesCount - 1
	}
	s.apply(tree.Action{Kind: tree.UpdateLike, ID: id, Likes: likes, Liked: !c.UserLiked})

	ctx, backend, owner := s.ctx, s.backend, s.owner
	return func() tea.Msg {
		res, err := backend.ToggleLike(ctx, id)
		return likedMsg{owner: owner, id: id, res: res, err: err}
	}
}

func (s *Section) edit(in item.EditIntent) tea.Cmd {
	c, _, ok := tree.Find(s.comments, in.ID)
	if !ok || !s.viewer.CanEdit(c) {
		return nil
	}

	if err := models.ValidateContent(in.Content); err != nil {
		if it, ok := s.Item(in.ID); ok {
			it.EditFailed(err)
		}
		return nil
	}

	if !s.status.begin(in.ID, OpEdit) {
		return nil
	}

	ctx, backend, owner := s.ctx, s.backend, s.owner
	return func() tea.Msg {
		c, err := backend.UpdateComment(ctx, in.ID, in.Content)
		return editedMsg{owner: owner, id: in.ID, comment: c, err: err}
	}
}

func (s *Section) remove(id models.ID) tea.Cmd {
	c, _, ok := tree.Find(s.comments, id)
	if !ok || !s.viewer.CanDelete(c) {
		return nil
	}

	if !s.status.begin(id, OpDelete) {
		return nil
	}

	ctx, backend, owner := s.ctx, s.backend, s.owner
	return func() tea.Msg {
		err := backend.DeleteComment(ctx, id)
		return deletedMsg{owner: owner, id: id, err: err}
	}
}

func (s *Section) reply(in item.ReplyIntent) tea.Cmd {
	_, level, ok := tree.Find(s.comments, in.ParentID)
	if !ok || !s.viewer.CanReply(level) {
		return nil
	}

	if err := models.ValidateContent(in.Content); err != nil {
		if it, ok := s.Item(in.ParentID); ok {
			it.ReplyFailed(err)
		}
		return nil
	}

	if !s.status.begin(in.ParentID, OpReply) {
		return nil
	}

	req := models.CreateCommentRequest{Content: in.Content, ArticleID: s.article, ParentID: in.ParentID}
	ctx, backend, owner := s.ctx, s.backend, s.owner

	return func() tea.Msg {
		c, err := backend.CreateComment(ctx, req)
		return repliedMsg{owner: owner, parent: in.ParentID, comment: c, err: err}
	}
}

func (s *Section) openReport(id models.ID) tea.Cmd {
	c, _, ok := tree.Find(s.comments, id)
	if !ok || !s.viewer.CanReport(c) {
		return nil
	}

	s.dialog.Open(id)
	return nil
}

func (s *Section) report(in report.Intent) tea.Cmd {
	if !in.Reason.Valid() || !s.viewer.Authenticated {
		return nil
	}

	if !s.status.begin(in.ID, OpReport) {
		return nil
	}

	ctx, backend, owner := s.ctx, s.backend, s.owner
	return func() tea.Msg {
		err := backend.ReportComment(ctx, in.ID, in.Request())
		return reportedMsg{owner: owner, id: in.ID, err: err}
	}
}

// logFailure пишет неудачную операцию в лог секции.
func (s *Section) logFailure(ctx context.Context, op Op, id models.ID, err error) {
	lg := log.From(ctx).With("op", "section/"+op.String(), "comment_id", id.String())

	if errors.Is(err, context.Canceled) {
		lg.Debug("request canceled")
		return
	}

	lg.Warn("operation failed", "status", api.StatusOf(err), "err", err)
}
