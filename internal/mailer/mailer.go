// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer delivers contact and membership submissions from the
// public site to the organization inbox through Resend.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendSender sends email via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a ResendSender with a default from address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send sends msg via Resend.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend send failed", "error", err, "subject", msg.Subject)
		return "", fmt.Errorf("resend send: %w", err)
	}

	slog.Info("email sent", "message_id", sent.Id, "subject", msg.Subject)
	return sent.Id, nil
}

// Field is one labelled line of a submission.
type Field struct {
	Label string
	Value string
}

// Submission is a form sent from the public site.
type Submission struct {
	Kind   string // "Contact" or "Join"
	Name   string
	Email  string
	Fields []Field
}

var submissionTmpl = template.Must(template.New("submission").Parse(`<h2>{{.Kind}} request from {{.Name}}</h2>
<p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
{{range .Fields}}{{if .Value}}<p><strong>{{.Label}}:</strong><br>{{.Value}}</p>
{{end}}{{end}}`))

// Message renders the submission as an email to the inbox, with reply-to
// set to the submitter. Values are HTML-escaped.
func (s Submission) Message(inbox string) (Message, error) {
	var buf bytes.Buffer
	if err := submissionTmpl.Execute(&buf, s); err != nil {
		return Message{}, fmt.Errorf("render submission: %w", err)
	}
	return Message{
		To:      []string{inbox},
		Subject: fmt.Sprintf("[%s] %s", s.Kind, s.Name),
		HTML:    buf.String(),
		ReplyTo: s.Email,
	}, nil
}
