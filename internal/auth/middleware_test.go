package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
)

type stubUserRepo struct {
	byUsername map[string]*domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Delete(ctx context.Context, id string) error         { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := s.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func newTestApp(t *testing.T, tm *TokenManager, repo *stubUserRepo) *fiber.App {
	t.Helper()
	m := NewAuthMiddleware(tm, repo, zap.NewNop())

	app := fiber.New()
	app.Use(m.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		roles := make([]string, 0, len(principal.Roles))
		for _, role := range principal.Roles {
			roles = append(roles, role.Authority())
		}
		return c.JSON(fiber.Map{"anonymous": false, "username": principal.User.Username, "roles": roles})
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, authHeader string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, decodeJSON(resp.Body, &body))
	return body
}

func TestMiddlewareNoHeaderStaysAnonymous(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	app := newTestApp(t, tm, &stubUserRepo{})

	body := whoami(t, app, "")
	assert.Equal(t, true, body["anonymous"])
}

func TestMiddlewareInvalidTokenStaysAnonymous(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	app := newTestApp(t, tm, &stubUserRepo{})

	for _, header := range []string{
		"Bearer garbage",
		"Basic abc123",
		"Bearer",
	} {
		body := whoami(t, app, header)
		assert.Equal(t, true, body["anonymous"], "header %q", header)
	}
}

func TestMiddlewareExpiredTokenStaysAnonymous(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Hour)
	repo := &stubUserRepo{byUsername: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", Roles: []domain.RoleName{domain.RoleUser}},
	}}
	app := newTestApp(t, tm, repo)

	body := whoami(t, app, "Bearer "+token)
	assert.Equal(t, true, body["anonymous"])
}

func TestMiddlewareValidTokenLoadsLiveRoles(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	// the store says alice is an admin even though the token payload
	// carries no role information at all
	repo := &stubUserRepo{byUsername: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", Roles: []domain.RoleName{domain.RoleUser, domain.RoleAdmin}},
	}}
	app := newTestApp(t, tm, repo)

	token, _, err := tm.Generate("alice")
	require.NoError(t, err)

	body := whoami(t, app, "Bearer "+token)
	assert.Equal(t, false, body["anonymous"])
	assert.Equal(t, "alice", body["username"])
	assert.ElementsMatch(t, []any{"ROLE_USER", "ROLE_ADMIN"}, body["roles"])
}

func TestMiddlewareUnknownSubjectStaysAnonymous(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	app := newTestApp(t, tm, &stubUserRepo{})

	token, _, err := tm.Generate("ghost")
	require.NoError(t, err)

	body := whoami(t, app, "Bearer "+token)
	assert.Equal(t, true, body["anonymous"])
}
