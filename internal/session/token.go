package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

var (
	// ErrInvalidToken — токен сессии битый или подписан не тем ключом.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("session token expired")
)

// CookieName — имя cookie с токеном сессии по умолчанию.
const CookieName = "session"

// Claims — полезная нагрузка токена сессии.
type Claims struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) user() models.User {
	return models.User{
		ID:        models.ID(c.Subject),
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		AvatarURL: c.AvatarURL,
		Role:      c.Role,
	}
}

// FromToken строит Viewer из токена сессии без проверки подписи:
// клиенту ключ неизвестен, а гейтинг на клиенте только подсказка для UI.
// Пустой токен — анонимный зритель без ошибки.
func FromToken(token string) (Viewer, error) {
	const op = "session/FromToken"

	if token == "" {
		return Anonymous(), nil
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Anonymous(), fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return Anonymous(), fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return Anonymous(), fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	return Authenticated(claims.user()), nil
}

// Issuer подписывает и проверяет токены сессии (HS256).
// Используется стабом бэкенда и в тестах.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer создаёт Issuer; ttl <= 0 — 24 часа.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает токен для пользователя.
func (i *Issuer) Issue(u models.User) (string, error) {
	const op = "session/Issuer.Issue"

	now := i.now()
	claims := Claims{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify проверяет подпись и срок действия, возвращая пользователя.
func (i *Issuer) Verify(token string) (models.User, error) {
	const op = "session/Issuer.Verify"

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !parsed.Valid || claims.Subject == "" {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.user(), nil
}
