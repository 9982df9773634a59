package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/diligence-api/internal/auth"
)

func TestUserStore_CreateAndAuthenticate(t *testing.T) {
	s := auth.NewUserStore()
	u, err := s.Create("analyst", "s3cret", auth.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.Active)

	got, err := s.Authenticate("analyst", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate("analyst", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = s.Authenticate("ghost", "s3cret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	s := auth.NewUserStore()
	_, err := s.Create("analyst", "pw", auth.RoleUser)
	require.NoError(t, err)
	_, err = s.Create("analyst", "pw2", auth.RoleUser)
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestUserStore_UnknownRoleDowngrades(t *testing.T) {
	s := auth.NewUserStore()
	u, err := s.Create("bob", "pw", "superuser")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, u.Role)
}

func TestUserStore_Delete(t *testing.T) {
	s := auth.NewUserStore()
	u, _ := s.Create("temp", "pw", auth.RoleUser)
	require.NoError(t, s.Delete(u.ID))
	assert.ErrorIs(t, s.Delete(u.ID), auth.ErrUserNotFound)
	_, err := s.Authenticate("temp", "pw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", time.Hour)
	u := &auth.User{ID: "user-1", Username: "analyst", Role: auth.RoleAdmin}

	raw, err := tokens.Generate(u)
	require.NoError(t, err)

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "analyst", claims.Username)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestTokens_Expired(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", -time.Minute)
	raw, err := tokens.Generate(&auth.User{ID: "user-1", Username: "analyst"})
	require.NoError(t, err)

	_, err = tokens.Validate(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_WrongKey(t *testing.T) {
	raw, err := auth.NewTokenService("key-a", time.Hour).
		Generate(&auth.User{ID: "user-1", Username: "analyst"})
	require.NoError(t, err)

	_, err = auth.NewTokenService("key-b", time.Hour).Validate(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", time.Hour)
	var sawClaims *auth.Claims
	handler := auth.RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawClaims, _ = auth.ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token reaches the handler with claims in context.
	raw, err := tokens.Generate(&auth.User{ID: "user-1", Username: "analyst", Role: auth.RoleUser})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sawClaims)
	assert.Equal(t, "analyst", sawClaims.Username)
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", time.Hour)
	protected := auth.RequireAuth(tokens)(auth.RequireAdmin(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })))

	userToken, _ := tokens.Generate(&auth.User{ID: "u1", Username: "user", Role: auth.RoleUser})
	adminToken, _ := tokens.Generate(&auth.User{ID: "u2", Username: "root", Role: auth.RoleAdmin})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
