package section

// Сценарии целиком: секция + api.Client + стаб бэкенда.

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-comments/internal/api"
	"github.com/pribylovaa/go-blog-comments/internal/item"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/session"
	"github.com/pribylovaa/go-blog-comments/internal/stub"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

type e2e struct {
	iss    *session.Issuer
	store  *storage.Memory
	client *api.Client
	s      *Section
	counts []int
}

func newE2E(t *testing.T) *e2e {
	t.Helper()

	e := &e2e{iss: session.NewIssuer("e2e", time.Hour), store: storage.NewMemory()}

	srv := httptest.NewServer(stub.NewRouter(e.store, e.iss, stub.Options{BasePath: "/api"}))
	t.Cleanup(srv.Close)

	var err error
	e.client, err = api.New(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	e.s = New(e.client, Options{
		ArticleID:     "7",
		Viewer:        session.Anonymous(),
		NoticeTTL:     -1,
		OnCountChange: func(n int) { e.counts = append(e.counts, n) },
	})
	t.Cleanup(e.s.Close)
	return e
}

// signIn выпускает токен, кладёт его в клиент и обновляет зрителя секции.
func (e *e2e) signIn(t *testing.T, u models.User) {
	t.Helper()

	token, err := e.iss.Issue(u)
	require.NoError(t, err)
	e.client.SetSession(token)

	v, err := session.FromToken(token)
	require.NoError(t, err)
	e.s.SetViewer(v)
}

func TestE2E_SignInAndPostFirstComment(t *testing.T) {
	e := newE2E(t)

	cmd := e.s.Init()
	require.Nil(t, e.s.Update(cmd()))
	require.Empty(t, e.s.Comments())
	require.Zero(t, e.s.Total())
	require.False(t, e.s.Viewer().Authenticated)

	e.signIn(t, models.User{ID: "42", Username: "reader"})

	e.s.SetDraft("Great read!")
	cmd = e.s.Submit()
	require.NotNil(t, cmd)
	require.Nil(t, e.s.Update(cmd()))

	require.Len(t, e.s.Comments(), 1)
	require.Equal(t, "Great read!", e.s.Comments()[0].Content)
	require.Equal(t, models.ID("42"), e.s.Comments()[0].User.ID)
	require.Equal(t, 1, e.s.Total())
	require.Equal(t, []int{1}, e.counts)
	require.Empty(t, e.s.Notices())
}

func TestE2E_ReplyThanks(t *testing.T) {
	e := newE2E(t)

	_, err := e.store.Create(t.Context(), storage.CreateInput{
		ArticleID: "7", Author: models.User{ID: "1", Username: "author"}, Content: "Nice article",
	})
	require.NoError(t, err)

	require.Nil(t, e.s.Update(e.s.Init()()))
	require.Equal(t, 1, e.s.Total())
	parentID := e.s.Comments()[0].ID

	e.signIn(t, models.User{ID: "2", Username: "fan"})

	it, ok := e.s.Item(parentID)
	require.True(t, ok)
	require.NoError(t, it.ToggleReply())
	it.SetReplyDraft("Thanks!")
	in, err := it.SubmitReply()
	require.NoError(t, err)

	cmd := e.s.Dispatch(in)
	require.NotNil(t, cmd)
	require.Nil(t, e.s.Update(cmd()))

	parent := e.s.Comments()[0]
	require.Len(t, parent.Replies, 1)
	require.Equal(t, "Thanks!", parent.Replies[0].Content)
	require.Equal(t, 1, e.s.Total())
	require.False(t, it.ReplyOpen())

	// Сервер считает только корни: перечитывание даёт тот же total.
	require.Nil(t, e.s.Update(e.s.Reload()()))
	require.Equal(t, 1, e.s.Total())
	require.Len(t, e.s.Comments()[0].Replies, 1)
}

func TestE2E_LikeReconcilesWithServer(t *testing.T) {
	e := newE2E(t)

	c, err := e.store.Create(t.Context(), storage.CreateInput{
		ArticleID: "7", Author: models.User{ID: "1", Username: "author"}, Content: "Nice",
	})
	require.NoError(t, err)

	// Чужие лайки, о которых клиент не знает.
	for _, u := range []models.ID{"8", "9"} {
		_, err := e.store.ToggleLike(t.Context(), c.ID, u)
		require.NoError(t, err)
	}

	e.signIn(t, models.User{ID: "2", Username: "fan"})
	require.Nil(t, e.s.Update(e.s.Init()()))

	// Ещё один лайк, пришедший после загрузки страницы.
	_, err = e.store.ToggleLike(t.Context(), c.ID, "10")
	require.NoError(t, err)

	cmd := e.s.Dispatch(item.LikeIntent{ID: c.ID})
	require.Equal(t, 3, e.s.Comments()[0].LikesCount, "optimistic: 2 + 1")

	require.Nil(t, e.s.Update(cmd()))
	require.Equal(t, 4, e.s.Comments()[0].LikesCount, "reconciled with the server")
	require.True(t, e.s.Comments()[0].UserLiked)
}
