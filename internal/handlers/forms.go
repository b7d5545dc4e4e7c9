// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"ventureclub/internal/mailer"
)

// Forms handles the public contact and join submissions.
type Forms struct {
	sender mailer.Sender
	inbox  string
}

// NewForms creates the forms handler group. sender may be nil when mail
// is not configured; submissions then fail with 503.
func NewForms(sender mailer.Sender, inbox string) *Forms {
	return &Forms{sender: sender, inbox: inbox}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type joinRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	University string   `json:"university"`
	Program    string   `json:"program"`
	Interests  []string `json:"interests"`
	Message    string   `json:"message"`
}

// Contact handles POST /api/contact.
func (f *Forms) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := validateContact(req); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	f.send(w, r, mailer.Submission{
		Kind:  "Contact",
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Fields: []mailer.Field{
			{Label: "Message", Value: req.Message},
		},
	})
}

// Join handles POST /api/join.
func (f *Forms) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := validateJoin(req); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	f.send(w, r, mailer.Submission{
		Kind:  "Join",
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Fields: []mailer.Field{
			{Label: "University", Value: req.University},
			{Label: "Program", Value: req.Program},
			{Label: "Interests", Value: strings.Join(req.Interests, ", ")},
			{Label: "Message", Value: req.Message},
		},
	})
}

func (f *Forms) send(w http.ResponseWriter, r *http.Request, sub mailer.Submission) {
	if f.sender == nil || f.inbox == "" {
		writeError(w, "email is not configured", http.StatusServiceUnavailable)
		return
	}

	msg, err := sub.Message(f.inbox)
	if err != nil {
		slog.Error("render submission failed", "kind", sub.Kind, "error", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := f.sender.Send(r.Context(), msg); err != nil {
		writeError(w, "failed to send message", http.StatusBadGateway)
		return
	}

	writeOK(w, http.StatusOK, nil)
}
