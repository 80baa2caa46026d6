// Package item — состояние одного комментария в интерфейсе.
//
// Режимы: просмотр и редактирование (только автор). Независимо от режима у
// комментария верхнего уровня может быть открыт редактор ответа. Все действия
// возвращают Intent; результат сетевого вызова оркестратор сообщает обратно
// через EditSucceeded/EditFailed и ReplySucceeded/ReplyFailed.
package item

import (
	"errors"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/session"
)

var (
	// ErrForbidden — зрителю действие недоступно.
	ErrForbidden = errors.New("action not allowed")
	// ErrNotEditing — сохранение вне режима редактирования.
	ErrNotEditing = errors.New("comment is not being edited")
	// ErrBusy — действие конфликтует с открытым редактором.
	ErrBusy = errors.New("comment is being edited")
	// ErrReplyClosed — отправка ответа при закрытом редакторе ответа.
	ErrReplyClosed = errors.New("reply editor is closed")
)

// Mode — режим отображения комментария.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}

	return "viewing"
}

// Item — контроллер одного комментария.
type Item struct {
	comment models.Comment
	level   int
	viewer  session.Viewer

	mode    Mode
	draft   string
	editErr error

	replyOpen  bool
	replyDraft string
	replyErr   error
}

// New создаёт элемент в режиме просмотра. level: 0 — верхний уровень.
func New(c models.Comment, level int, v session.Viewer) *Item {
	return &Item{
		comment: c,
		level:   level,
		viewer:  v,
		draft:   c.Content,
	}
}

func (it *Item) Comment() models.Comment { return it.comment }
func (it *Item) ID() models.ID           { return it.comment.ID }
func (it *Item) Level() int              { return it.level }
func (it *Item) Mode() Mode              { return it.mode }
func (it *Item) Draft() string           { return it.draft }
func (it *Item) EditError() error        { return it.editErr }
func (it *Item) ReplyOpen() bool         { return it.replyOpen }
func (it *Item) ReplyDraft() string      { return it.replyDraft }
func (it *Item) ReplyError() error       { return it.replyErr }

// Sync подставляет актуальную версию комментария из списка.
// Открытый черновик не трогается.
func (it *Item) Sync(c models.Comment, level int) {
	it.comment = c
	it.level = level

	if it.mode == Viewing {
		it.draft = c.Content
	}

	if level != 0 {
		it.replyOpen = false
		it.replyDraft = ""
		it.replyErr = nil
	}
}

// SetViewer меняет зрителя (вход/выход). Недоступные теперь режимы закрываются.
func (it *Item) SetViewer(v session.Viewer) {
	it.viewer = v

	if it.mode == Editing && !v.CanEdit(it.comment) {
		it.CancelEdit()
	}

	if it.replyOpen && !v.CanReply(it.level) {
		it.replyOpen = false
		it.replyErr = nil
	}
}

// Permissions — какие действия показывать зрителю.
type Permissions struct {
	Edit, Delete, Reply, Like, Report bool
}

func (it *Item) Permissions() Permissions {
	return Permissions{
		Edit:   it.viewer.CanEdit(it.comment),
		Delete: it.viewer.CanDelete(it.comment),
		Reply:  it.viewer.CanReply(it.level),
		Like:   it.viewer.CanLike(),
		Report: it.viewer.CanReport(it.comment),
	}
}

// StartEdit переводит в режим редактирования с черновиком из текущего текста.
func (it *Item) StartEdit() error {
	if !it.viewer.CanEdit(it.comment) {
		return ErrForbidden
	}

	if it.mode == Editing {
		return nil
	}

	it.mode = Editing
	it.draft = it.comment.Content
	it.editErr = nil
	return nil
}

// SetDraft обновляет черновик редактирования.
func (it *Item) SetDraft(s string) {
	it.draft = s
	if it.editErr != nil && models.ValidateContent(s) == nil {
		it.editErr = nil
	}
}

// CancelEdit восстанавливает черновик и возвращает в просмотр без сетевых вызовов.
func (it *Item) CancelEdit() {
	it.mode = Viewing
	it.draft = it.comment.Content
	it.editErr = nil
}

// SaveEdit проверяет черновик. Ошибка валидации остаётся в EditError,
// режим редактирования не покидается.
func (it *Item) SaveEdit() (EditIntent, error) {
	if it.mode != Editing {
		return EditIntent{}, ErrNotEditing
	}

	if err := models.ValidateContent(it.draft); err != nil {
		it.editErr = err
		return EditIntent{}, err
	}

	it.editErr = nil
	return EditIntent{ID: it.comment.ID, Content: it.draft}, nil
}

// EditSucceeded — сервер принял правку; c — каноническая версия.
func (it *Item) EditSucceeded(c models.Comment) {
	it.comment = c
	it.mode = Viewing
	it.draft = c.Content
	it.editErr = nil
}

// EditFailed — редактор остаётся открытым с введённым черновиком.
func (it *Item) EditFailed(err error) {
	it.mode = Editing
	it.editErr = err
}

// Delete запрашивает удаление. Сам элемент из списка не убирается.
func (it *Item) Delete() (DeleteIntent, error) {
	if !it.viewer.CanDelete(it.comment) {
		return DeleteIntent{}, ErrForbidden
	}

	if it.mode == Editing {
		return DeleteIntent{}, ErrBusy
	}

	return DeleteIntent{ID: it.comment.ID}, nil
}

// Like запрашивает переключение лайка.
func (it *Item) Like() (LikeIntent, error) {
	if !it.viewer.CanLike() {
		return LikeIntent{}, ErrForbidden
	}

	return LikeIntent{ID: it.comment.ID}, nil
}

// Report запрашивает диалог жалобы.
func (it *Item) Report() (ReportIntent, error) {
	if !it.viewer.CanReport(it.comment) {
		return ReportIntent{}, ErrForbidden
	}

	return ReportIntent{ID: it.comment.ID}, nil
}

// ToggleReply открывает или закрывает редактор ответа. Текст при закрытии сохраняется.
func (it *Item) ToggleReply() error {
	if !it.viewer.CanReply(it.level) {
		return ErrForbidden
	}

	it.replyOpen = !it.replyOpen
	it.replyErr = nil
	return nil
}

// SetReplyDraft обновляет текст ответа.
func (it *Item) SetReplyDraft(s string) {
	it.replyDraft = s
	if it.replyErr != nil && models.ValidateContent(s) == nil {
		it.replyErr = nil
	}
}

// SubmitReply проверяет текст ответа и возвращает intent.
func (it *Item) SubmitReply() (ReplyIntent, error) {
	if !it.viewer.CanReply(it.level) {
		return ReplyIntent{}, ErrForbidden
	}

	if !it.replyOpen {
		return ReplyIntent{}, ErrReplyClosed
	}

	if err := models.ValidateContent(it.replyDraft); err != nil {
		it.replyErr = err
		return ReplyIntent{}, err
	}

	it.replyErr = nil
	return ReplyIntent{ParentID: it.comment.ID, Content: it.replyDraft}, nil
}

// ReplySucceeded очищает и закрывает редактор ответа.
func (it *Item) ReplySucceeded() {
	it.replyOpen = false
	it.replyDraft = ""
	it.replyErr = nil
}

// ReplyFailed оставляет редактор открытым с введённым текстом.
func (it *Item) ReplyFailed(err error) {
	it.replyOpen = true
	it.replyErr = err
}
