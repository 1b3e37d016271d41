package session

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zeptools/gw-cardpress/db/kvdb"
	"github.com/zeptools/gw-cardpress/db/kvdb/impls/memory"
	"github.com/zeptools/gw-cardpress/sec"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("peonies"), bcrypt.MinCost)
	require.NoError(t, err)
	conf := &Conf{
		EncryptionKey:     base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))),
		JWTSecret:         "test-secret",
		AdminPasswordHash: string(hash),
	}
	require.NoError(t, conf.Prepare())
	kv := memory.NewClient(&kvdb.Conf{Type: "memory"})
	require.NoError(t, kv.Init())
	m := NewManager(conf, "cardpress", kv)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return now }
	kv.Now = m.Now
	return m
}

func login(t *testing.T, m *Manager) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, "peonies"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	return cookies[0]
}

func TestLoginVerifyLogout(t *testing.T) {
	m := newManager(t)
	assert.ErrorIs(t, m.Login(context.Background(), httptest.NewRecorder(), "roses"), sec.ErrPasswordMismatch)

	cookie := login(t, m)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.AddCookie(cookie)
	claims, err := m.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, claims.Role)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Logout(context.Background(), rec, req))
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	_, err = m.Verify(context.Background(), req)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestVerifyRejects(t *testing.T) {
	m := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Verify(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoSession)

	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "garbage-garbage-garbage-garbage-garbage"})
	_, err = m.Verify(context.Background(), req)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestRequireAdmin(t *testing.T) {
	m := newManager(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found := SessionIDFromContext(r.Context())
		assert.True(t, found)
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := m.RequireAdmin().Wrap(ok)

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.AddCookie(login(t, m))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	writes := m.RequireAdminUnlessGET().Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec = httptest.NewRecorder()
	writes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shops/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	writes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/shops", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginLogoutHandlers(t *testing.T) {
	m := newManager(t)

	rec := httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"roses"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"peonies"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	m.LogoutHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := m.Verify(context.Background(), req)
	assert.ErrorIs(t, err, ErrRevoked)
}
