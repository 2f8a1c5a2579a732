package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store/memory"
)

func seedLoginUser(t *testing.T, st *memory.Store, name, secret string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, st.Users.Create(context.Background(), &models.User{
		DisplayName: name,
		Role:        models.RoleMember,
		SecretHash:  string(hash),
	}))
}

func TestLoginIssuesToken(t *testing.T) {
	st := memory.New()
	seedLoginUser(t, st, "alice", "opensesame")
	handler := LoginHandler(st.Users, nil, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"name":"alice","secret_code":"opensesame"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.DisplayName)
	assert.True(t, resp.User.IsOnline)

	claims, err := ValidateToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)

	u, err := st.Users.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, u.IsOnline, "login flips the stored online flag")
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	st := memory.New()
	seedLoginUser(t, st, "alice", "opensesame")
	handler := LoginHandler(st.Users, nil, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"name":"alice","secret_code":"wrong"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	st := memory.New()
	handler := LoginHandler(st.Users, nil, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"name":"ghost","secret_code":"whatever"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewarePopulatesContext(t *testing.T) {
	token, err := GenerateToken("alice", "admin", "test-secret")
	require.NoError(t, err)

	var gotName, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName, _ = r.Context().Value(NameKey).(string)
		gotRole, _ = r.Context().Value(RoleKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware("test-secret")(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotName)
	assert.Equal(t, "admin", gotRole)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	JWTMiddleware("test-secret")(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
