package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/zeptools/gw-cardpress/sec"
)

const (
	DefaultCookieName = "admin_session"
	DefaultTTLSec     = 7 * 24 * 3600
)

// Conf is read from .web-session.json
type Conf struct {
	EncryptionKey     string `json:"enckey"`     // base64 (std or raw url), 32 bytes
	JWTSecret         string `json:"jwt_secret"` // HS256 signing secret
	Issuer            string `json:"issuer"`
	TTLSec            int    `json:"ttl_sec"`
	CookieName        string `json:"cookie_name"`
	InsecureCookie    bool   `json:"insecure_cookie"` // local http only
	AdminPasswordHash string `json:"admin_password_hash"`

	Cipher *sec.XChaCha20Poly1305Cipher `json:"-"`
}

// Prepare fills defaults and builds the cookie cipher.
func (c *Conf) Prepare() error {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.TTLSec <= 0 {
		c.TTLSec = DefaultTTLSec
	}
	if c.Issuer == "" {
		c.Issuer = "cardpress"
	}
	if c.JWTSecret == "" {
		return errors.New("session: jwt_secret is required")
	}
	key, err := decodeKey(c.EncryptionKey)
	if err != nil {
		return fmt.Errorf("session: enckey: %w", err)
	}
	if c.Cipher, err = sec.NewXChaCha20Poly1305CipherBase64(key); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (c *Conf) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

func decodeKey(s string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(s); err == nil {
		return key, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
