// Package section — оркестратор ленты комментариев статьи.
//
// Section единолично владеет списком комментариев: элементы (internal/item) и
// диалог жалобы (internal/report) только возвращают намерения, а Section
// превращает их в сетевые вызовы (tea.Cmd) и применяет результаты в Update.
// Update и все методы вызываются из одной горутины цикла bubbletea, поэтому
// состояние не защищается мьютексами.
//
// Правила:
//   - лайк применяется оптимистично (±1) и сверяется со значениями сервера,
//     при ошибке откатывается к снимку;
//   - повторная операция над тем же комментарием, пока первая не завершилась,
//     игнорируется (карта статусов);
//   - создание, ответ, правка и удаление меняют список только после успеха;
//   - счётчик total меняется только при создании/удалении комментария
//     верхнего уровня;
//   - после Close поздние результаты игнорируются.
package section

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pribylovaa/go-blog-comments/internal/item"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/pkg/log"
	"github.com/pribylovaa/go-blog-comments/internal/report"
	"github.com/pribylovaa/go-blog-comments/internal/session"
	"github.com/pribylovaa/go-blog-comments/internal/tree"
)

//go:generate mockgen -source=section.go -destination=../../mocks/backend.go -package=mocks

// Backend — REST-бэкенд комментариев (реализуется *api.Client).
type Backend interface {
	ListComments(ctx context.Context, articleID models.ID, page int) (models.Page, error)
	CreateComment(ctx context.Context, in models.CreateCommentRequest) (models.Comment, error)
	UpdateComment(ctx context.Context, id models.ID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, id models.ID) error
	ToggleLike(ctx context.Context, id models.ID) (models.LikeResult, error)
	ReportComment(ctx context.Context, id models.ID, in models.ReportRequest) error
}

// Options — параметры секции.
type Options struct {
	ArticleID models.ID
	Viewer    session.Viewer
	// NoticeTTL — время жизни уведомлений (0 — DefaultNoticeTTL, <0 — без истечения).
	NoticeTTL time.Duration
	Logger    *slog.Logger
	// OnCountChange вызывается при каждом изменении общего числа комментариев.
	OnCountChange func(total int)
}

type likeSnapshot struct {
	likes int
	liked bool
}

var owners atomic.Uint64

// Section — лента комментариев одной статьи.
type Section struct {
	backend Backend
	article models.ID
	viewer  session.Viewer
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	owner  uint64

	comments []models.Comment
	total    int
	hasMore  bool
	page     int
	loaded   bool
	loadSeq  uint64

	status statuses
	items  map[models.ID]*item.Item
	likes  map[models.ID]likeSnapshot
	dialog report.Dialog

	draft    string
	draftErr error

	notices    []Notice
	nextNotice int
	noticeTTL  time.Duration

	onCount func(int)
}

// New создаёт секцию. Загрузку первой страницы запускает Init.
func New(backend Backend, opts Options) *Section {
	lg := opts.Logger
	if lg == nil {
		lg = log.Discard()
	}
	lg = lg.With("article_id", opts.ArticleID.String())

	ttl := opts.NoticeTTL
	if ttl == 0 {
		ttl = DefaultNoticeTTL
	}

	ctx, cancel := context.WithCancel(log.Into(context.Background(), lg))

	return &Section{
		backend:   backend,
		article:   opts.ArticleID,
		viewer:    opts.Viewer,
		log:       lg,
		ctx:       ctx,
		cancel:    cancel,
		owner:     owners.Add(1),
		comments:  []models.Comment{},
		status:    statuses{},
		items:     map[models.ID]*item.Item{},
		likes:     map[models.ID]likeSnapshot{},
		noticeTTL: ttl,
		onCount:   opts.OnCountChange,
	}
}

// Close отменяет незавершённые запросы; их результаты будут проигнорированы.
func (s *Section) Close() {
	if s.closed {
		return
	}

	s.closed = true
	s.cancel()
	s.log.Debug("section closed")
}

func (s *Section) ArticleID() models.ID   { return s.article }
func (s *Section) Viewer() session.Viewer { return s.viewer }
func (s *Section) Total() int             { return s.total }
func (s *Section) HasMore() bool          { return s.hasMore }
func (s *Section) Page() int              { return s.page }
func (s *Section) Loaded() bool           { return s.loaded }
func (s *Section) Closed() bool           { return s.closed }
func (s *Section) Dialog() *report.Dialog { return &s.dialog }
func (s *Section) Draft() string          { return s.draft }
func (s *Section) DraftError() error      { return s.draftErr }
func (s *Section) Loading() bool          { return s.status.get("", OpLoad) == Pending }
func (s *Section) Submitting() bool       { return s.status.get("", OpCreate) == Pending }

// Status — состояние операции op над комментарием id.
func (s *Section) Status(id models.ID, op Op) Status { return s.status.get(id, op) }

// Comments возвращает текущий список. Срез нельзя изменять.
func (s *Section) Comments() []models.Comment { return s.comments }

// Item возвращает контроллер комментария id (создаётся при первом обращении).
func (s *Section) Item(id models.ID) (*item.Item, bool) {
	c, level, ok := tree.Find(s.comments, id)
	if !ok {
		return nil, false
	}

	it, ok := s.items[id]
	if !ok {
		it = item.New(c, level, s.viewer)
		s.items[id] = it
	}

	return it, true
}

// SetViewer меняет зрителя (вход/выход) для всех элементов.
func (s *Section) SetViewer(v session.Viewer) {
	s.viewer = v
	for _, it := range s.items {
		it.SetViewer(v)
	}

	if !v.Authenticated {
		s.dialog.Cancel()
	}
}

// SetDraft обновляет текст нового комментария верхнего уровня.
func (s *Section) SetDraft(text string) {
	s.draft = text
	if s.draftErr != nil && models.ValidateContent(text) == nil {
		s.draftErr = nil
	}
}

// apply меняет список через редьюсер и синхронизирует элементы.
func (s *Section) apply(a tree.Action) {
	s.comments = tree.Reduce(s.comments, a)
	s.syncItems()
}

func (s *Section) syncItems() {
	for id, it := range s.items {
		c, level, ok := tree.Find(s.comments, id)
		if !ok {
			delete(s.items, id)
			delete(s.likes, id)
			s.status.forget(id)
			continue
		}

		it.Sync(c, level)
	}
}

func (s *Section) setTotal(n int) {
	if n < 0 {
		n = 0
	}

	if n == s.total {
		return
	}

	s.total = n
	if s.onCount != nil {
		s.onCount(n)
	}
}
