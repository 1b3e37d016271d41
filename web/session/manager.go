package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/zeptools/gw-cardpress/db/kvdb"
	"github.com/zeptools/gw-cardpress/responses"
	"github.com/zeptools/gw-cardpress/routing"
	"github.com/zeptools/gw-cardpress/sec"
)

var (
	ErrNoSession = errors.New("no admin session")
	ErrRevoked   = errors.New("admin session revoked")
)

// Manager issues and checks the admin session cookie.
// The cookie holds an encrypted HS256 token whose jti must exist in the KV store.
type Manager struct {
	Conf    *Conf
	Cipher  sec.Cipher
	AppName string // KV key namespace
	KV      kvdb.Client
	Now     func() time.Time
}

func NewManager(conf *Conf, appName string, kv kvdb.Client) *Manager {
	return &Manager{Conf: conf, Cipher: conf.Cipher, AppName: appName, KV: kv, Now: time.Now}
}

func (m *Manager) kvKey(sessionID string) string {
	return m.AppName + "_asession:" + sessionID
}

// Login checks the admin password and sets a fresh session cookie.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, password string) error {
	if err := sec.CheckPassword(m.Conf.AdminPasswordHash, password); err != nil {
		return err
	}
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}
	now := m.Now()
	token, err := sec.IssueHS256Token([]byte(m.Conf.JWTSecret), m.Conf.Issuer, sessionID, now, m.Conf.TTL())
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	value, err := m.Cipher.EncryptEncode([]byte(token))
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	if err = m.KV.Set(ctx, m.kvKey(sessionID), now.Unix(), m.Conf.TTL()); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.Conf.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   !m.Conf.InsecureCookie,
		MaxAge:   m.Conf.TTLSec,
		SameSite: http.SameSiteLaxMode,
	})
	log.Printf("[INFO][SESSION] admin session %s started", sessionID[:8])
	return nil
}

// Verify returns the claims of a live session carried by r.
func (m *Manager) Verify(ctx context.Context, r *http.Request) (*sec.AdminClaims, error) {
	cookie, err := r.Cookie(m.Conf.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	token, err := m.Cipher.DecodeDecrypt(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sec.ErrInvalidToken, err)
	}
	claims, err := sec.ParseHS256Token([]byte(m.Conf.JWTSecret), m.Conf.Issuer, string(token), m.Now())
	if err != nil {
		return nil, err
	}
	found, err := m.KV.Exists(ctx, m.kvKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if !found {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Logout revokes the session server-side (if any) and clears the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if claims, verr := m.Verify(ctx, r); verr == nil {
		_, err = m.KV.Delete(ctx, m.kvKey(claims.ID))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.Conf.CookieName,
		Path:     "/",
		MaxAge:   -1, // Delete
		HttpOnly: true,
		Secure:   !m.Conf.InsecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// RequireAdmin rejects requests without a live admin session with 401.
func (m *Manager) RequireAdmin() routing.HandlerWrapper {
	return routing.WrapperFunc(func(inner http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.Verify(r.Context(), r)
			if err != nil {
				responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			inner.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), claims.ID)))
		})
	})
}

// RequireAdminUnlessGET lets safe reads through and guards writes.
func (m *Manager) RequireAdminUnlessGET() routing.HandlerWrapper {
	guard := m.RequireAdmin()
	return routing.WrapperFunc(func(inner http.Handler) http.Handler {
		guarded := guard.Wrap(inner)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				inner.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	})
}
