package grants

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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/gleeworld/internal/shared"
	_ "github.com/gleeworld/gleeworld/testing"
)

func newGrantRouter(repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil, nil, logger))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func adminRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	sess := &shared.Session{}
	sess.SetIdentity("admin-1")
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestCreateGrantEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newGrantRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodPost, "/",
		`{"email":"alto@gleeworld.org","permission_key":"`+shared.PermBudgetCreation+`"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		GrantedBy string `json:"granted_by"`
		IsActive  bool   `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alto@gleeworld.org", resp.Email)
	assert.Equal(t, "admin-1", resp.GrantedBy, "the actor comes from the session")
	assert.True(t, resp.IsActive)
}

func TestCreateGrantEndpointConflict(t *testing.T) {
	repo := newMemoryRepo()
	router := newGrantRouter(repo)
	body := `{"email":"alto@gleeworld.org","permission_key":"` + shared.PermContracts + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodPost, "/", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodPost, "/", body))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateGrantEndpointValidation(t *testing.T) {
	router := newGrantRouter(newMemoryRepo())

	for name, body := range map[string]string{
		"bad email":   `{"email":"nope","permission_key":"contracts"}`,
		"missing key": `{"email":"a@gleeworld.org"}`,
		"unknown key": `{"email":"a@gleeworld.org","permission_key":"launch_rockets"}`,
		"broken json": `{`,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, adminRequest(http.MethodPost, "/", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestListGrantsEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newGrantRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodPost, "/",
		`{"email":"alto@gleeworld.org","permission_key":"`+shared.PermContracts+`"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodGet, "/?email=alto@gleeworld.org", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Grants []grantResponse `json:"grants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Grants, 1)

	// The email filter is mandatory.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodGet, "/", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeGrantEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newGrantRouter(repo)

	stored, err := NewService(repo, nil, nil, nil).Create(context.Background(), "admin-1", "alto@gleeworld.org", shared.PermContracts, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodDelete, "/1", ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, repo.rows[stored.ID].IsActive)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodDelete, "/999", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(http.MethodDelete, "/not-a-number", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrantActiveAt(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Grant{IsActive: true}.ActiveAt(now))
	assert.True(t, Grant{IsActive: true, ExpiresAt: &future}.ActiveAt(now))
	assert.False(t, Grant{IsActive: true, ExpiresAt: &past}.ActiveAt(now))
	assert.False(t, Grant{IsActive: false}.ActiveAt(now))
}
