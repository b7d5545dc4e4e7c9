// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ventureclub/internal/middleware"
	"ventureclub/internal/session"
)

// SessionManager creates and destroys admin sessions. *session.Store
// satisfies it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups the admin login handlers. The admin panel has one shared
// password, given either as a bcrypt hash or in plain text.
type Auth struct {
	sessions     SessionManager
	password     string
	passwordHash []byte
}

// NewAuth creates a new Auth handler group. The hash wins when both are set.
func NewAuth(sessions SessionManager, password, passwordHash string) *Auth {
	a := &Auth{sessions: sessions, password: password}
	if passwordHash != "" {
		a.passwordHash = []byte(passwordHash)
	}
	return a
}

// configured reports whether any admin password is set.
func (a *Auth) configured() bool {
	return a.password != "" || a.passwordHash != nil
}

// checkPassword compares a submitted password against the configured one.
func (a *Auth) checkPassword(submitted string) bool {
	if a.passwordHash != nil {
		return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.password), []byte(submitted)) == 1
}

// Login handles POST /api/auth/login {password}.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if !a.configured() {
		writeError(w, "admin login is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Password == "" || !a.checkPassword(req.Password) {
		slog.Warn("admin login rejected", "remote", r.RemoteAddr)
		writeError(w, "invalid password", http.StatusUnauthorized)
		return
	}

	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		Role:      session.RoleAdmin,
		RemoteIP:  r.RemoteAddr,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	slog.Info("admin logged in", "remote", r.RemoteAddr)
	writeOK(w, http.StatusOK, nil)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeOK(w, http.StatusOK, nil)
}

// Session reports whether the request carries an admin session.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	writeOK(w, http.StatusOK, map[string]any{
		"authenticated": sess != nil && sess.Role == session.RoleAdmin,
	})
}
