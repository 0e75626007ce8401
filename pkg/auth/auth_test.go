package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users []models.User
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memUsers) ListUsers(_ context.Context) ([]models.User, error) {
	return m.users, nil
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	users := &memUsers{users: []models.User{{ID: uuid.New(), Username: "hamid", PasswordHash: hash, Role: models.RoleAgent}}}

	u, err := Authenticate(ctx, users, "hamid", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "hamid", u.Username)

	_, err = Authenticate(ctx, users, "hamid", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = Authenticate(ctx, users, "nobody", "s3cret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := &memUsers{}

	created, err := EnsureAdmin(ctx, users, "admin", "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, users.users, 1)
	assert.Equal(t, models.RoleAdmin, users.users[0].Role)

	created, err = EnsureAdmin(ctx, users, "admin", "changeme")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = Authenticate(ctx, users, "admin", "changeme")
	assert.NoError(t, err)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	user := &models.User{ID: uuid.New(), Username: "hamid", FirstName: "Hamid", LastName: "Setar", Role: models.RoleAdmin}

	signed, expires, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "Hamid Setar", claims.Name)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	other := NewTokens("another-secret-another-secret-xx", time.Hour)
	_, err = other.Validate(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokensExpired(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, _, err := tokens.Issue(&models.User{ID: uuid.New(), Username: "hamid"})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Validate(signed)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	signed, _, err := tokens.Issue(&models.User{ID: uuid.New(), Username: "hamid"})
	require.NoError(t, err)

	var author string
	handler := tokens.Middleware(func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		author = Author(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/sales", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	// No first or last name, so the username stands in.
	assert.Equal(t, "hamid", author)
}
