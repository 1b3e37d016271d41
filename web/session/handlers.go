package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/zeptools/gw-cardpress/requests"
	"github.com/zeptools/gw-cardpress/responses"
	"github.com/zeptools/gw-cardpress/sec"
)

// LoginHandler serves POST /api/auth/login
func (m *Manager) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body sec.LoginRequestBody
	if err := requests.DecodeJSON(w, r, &body); err != nil || body.Password == "" {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "password: required")
		return
	}
	err := m.Login(r.Context(), w, body.Password)
	switch {
	case errors.Is(err, sec.ErrPasswordMismatch):
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "invalid password")
	case err != nil:
		log.Printf("[ERROR][SESSION] login: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	default:
		responses.EncodeWriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// LogoutHandler serves POST /api/auth/logout
func (m *Manager) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := m.Logout(r.Context(), w, r); err != nil {
		log.Printf("[WARN][SESSION] logout: %v", err)
	}
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
