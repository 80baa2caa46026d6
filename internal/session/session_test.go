package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

var (
	alice = models.User{ID: "1", Username: "alice"}
	bob   = models.User{ID: "2", Username: "bob"}
	admin = models.User{ID: "3", Username: "root", Role: models.RoleAdmin}
)

func commentBy(u models.User) models.Comment {
	return models.Comment{ID: "c1", User: u, Content: "x"}
}

// Таблица прав из раздела авторизации: автор/чужой/админ/аноним.
func TestViewer_Permissions(t *testing.T) {
	t.Parallel()

	c := commentBy(alice)

	author := Authenticated(alice)
	other := Authenticated(bob)
	adm := Authenticated(admin)
	anon := Anonymous()

	require.True(t, author.CanEdit(c))
	require.False(t, other.CanEdit(c))
	require.False(t, adm.CanEdit(c))
	require.False(t, anon.CanEdit(c))

	require.True(t, author.CanDelete(c))
	require.False(t, other.CanDelete(c))
	require.True(t, adm.CanDelete(c))
	require.False(t, anon.CanDelete(c))

	require.True(t, other.CanReply(0))
	require.False(t, other.CanReply(1))
	require.False(t, anon.CanReply(0))

	require.True(t, other.CanLike())
	require.False(t, anon.CanLike())

	require.False(t, author.CanReport(c))
	require.True(t, other.CanReport(c))
	require.True(t, adm.CanReport(c))
	require.False(t, anon.CanReport(c))
}

func TestIssuer_IssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Hour)
	token, err := iss.Issue(admin)
	require.NoError(t, err)

	u, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, admin, u)

	_, err = NewIssuer("other-secret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_VerifyExpired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := iss.Issue(alice)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestFromToken(t *testing.T) {
	t.Parallel()

	v, err := FromToken("")
	require.NoError(t, err)
	require.False(t, v.Authenticated)

	_, err = FromToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	token, err := NewIssuer("unknown-to-client", time.Hour).Issue(bob)
	require.NoError(t, err)

	v, err = FromToken(token)
	require.NoError(t, err)
	require.True(t, v.Authenticated)
	require.Equal(t, bob.ID, v.User.ID)
	require.Equal(t, "bob", v.User.Username)
}
