package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/alekreuaya/lucky-naga/model"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrNotAuthorized = errors.New("not authorized")
)

type Claims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens. Tokens are stateless:
// everything needed for verification travels in the signed claim set.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Sign(username string, role model.Role) (string, error) {
	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify reports expiry distinctly from any other defect so callers can
// tell "log in again" apart from "bad token".
func (m *Manager) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// FromRequest extracts the bearer token and gates it on the required
// role. Role mismatch is ErrNotAuthorized, never a token error.
func (m *Manager) FromRequest(c *fiber.Ctx, required model.Role) (*Claims, error) {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer"))
	if token == "" {
		return nil, ErrTokenInvalid
	}
	claims, err := m.Verify(token)
	if err != nil {
		return nil, err
	}
	if !claims.Role.Allows(required) {
		return nil, ErrNotAuthorized
	}
	return claims, nil
}

// StatusFor maps auth errors to HTTP statuses: token defects ask the
// caller to log in again, role mismatch is a plain forbidden.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}
