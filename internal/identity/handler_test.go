package identity_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gleeworld/gleeworld/internal/identity"
	"github.com/gleeworld/gleeworld/internal/shared"
	_ "github.com/gleeworld/gleeworld/testing"
)

type stubRepo struct {
	account *identity.Account

	createdSessions []string
	deletedSessions []string
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*identity.Account, error) {
	if s.account == nil || !strings.EqualFold(s.account.Email, email) {
		return nil, shared.ErrInvalidCredentials
	}
	return s.account, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id, _ string, _ time.Time, _, _ string) error {
	s.createdSessions = append(s.createdSessions, id)
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	s.deletedSessions = append(s.deletedSessions, id)
	return nil
}

func newIdentityHandler(t *testing.T, repo identity.Repository) (*identity.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return identity.NewHandler(logger, identity.NewService(repo), sessionManager, csrfManager), sessionManager
}

func doJSON(t *testing.T, handler http.Handler, sm *shared.SessionManager, method, path, body string, sess *shared.Session) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sess == nil {
		loaded, err := sm.Load(context.Background(), req)
		require.NoError(t, err)
		sess = loaded
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, sess
}

func seededAccount(t *testing.T, password string) *identity.Account {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &identity.Account{
		ID:           "11111111-2222-3333-4444-555555555555",
		Email:        "alto@gleeworld.org",
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func routeFor(h *identity.Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{account: seededAccount(t, "correct-horse-battery")}
	handler, sm := newIdentityHandler(t, repo)

	rec, sess := doJSON(t, routeFor(handler), sm, http.MethodPost, "/login",
		`{"email":"alto@gleeworld.org","password":"correct-horse-battery"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Identity *identity.Identity `json:"identity"`
		CSRF     string             `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Identity)
	assert.Equal(t, repo.account.ID, resp.Identity.ID)
	assert.NotEmpty(t, resp.CSRF, "the SPA needs its CSRF token after login")

	assert.Equal(t, repo.account.ID, sess.Identity())
	assert.Equal(t, []string{sess.ID}, repo.createdSessions)
}

func TestLoginReturnsRememberedPath(t *testing.T) {
	repo := &stubRepo{account: seededAccount(t, "correct-horse-battery")}
	handler, sm := newIdentityHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"alto@gleeworld.org","password":"correct-horse-battery"}`))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetReturnTo("/dashboard/modules?tab=2")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	routeFor(handler).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ReturnTo string `json:"return_to"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/dashboard/modules?tab=2", resp.ReturnTo)
	assert.Empty(t, sess.ConsumeReturnTo(), "the slot is cleared after one use")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := &stubRepo{account: seededAccount(t, "correct-horse-battery")}
	handler, sm := newIdentityHandler(t, repo)

	rec, sess := doJSON(t, routeFor(handler), sm, http.MethodPost, "/login",
		`{"email":"alto@gleeworld.org","password":"wrong-password"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sess.Identity())
	assert.Empty(t, repo.createdSessions)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	account := seededAccount(t, "correct-horse-battery")
	account.IsActive = false
	handler, sm := newIdentityHandler(t, &stubRepo{account: account})

	rec, _ := doJSON(t, routeFor(handler), sm, http.MethodPost, "/login",
		`{"email":"alto@gleeworld.org","password":"correct-horse-battery"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesBody(t *testing.T) {
	handler, sm := newIdentityHandler(t, &stubRepo{})

	rec, _ := doJSON(t, routeFor(handler), sm, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, routeFor(handler), sm, http.MethodPost, "/login", `{`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpointAnonymous(t *testing.T) {
	handler, sm := newIdentityHandler(t, &stubRepo{})

	rec, _ := doJSON(t, routeFor(handler), sm, http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Identity *identity.Identity `json:"identity"`
		CSRF     string             `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Identity)
	assert.NotEmpty(t, resp.CSRF)
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{account: seededAccount(t, "correct-horse-battery")}
	handler, sm := newIdentityHandler(t, repo)

	_, sess := doJSON(t, routeFor(handler), sm, http.MethodPost, "/login",
		`{"email":"alto@gleeworld.org","password":"correct-horse-battery"}`, nil)
	require.Equal(t, repo.account.ID, sess.Identity())

	rec, _ := doJSON(t, routeFor(handler), sm, http.MethodPost, "/logout", "", sess)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{sess.ID}, repo.deletedSessions)
}
