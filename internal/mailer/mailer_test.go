// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mailer

import (
	"strings"
	"testing"
)

func TestSubmissionMessage(t *testing.T) {
	s := Submission{
		Kind:  "Join",
		Name:  "Sam Lee",
		Email: "sam@example.com",
		Fields: []Field{
			{Label: "University", Value: "State U"},
			{Label: "Program", Value: ""},
			{Label: "Message", Value: "<script>alert(1)</script>"},
		},
	}

	msg, err := s.Message("board@example.com")
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if len(msg.To) != 1 || msg.To[0] != "board@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if msg.ReplyTo != "sam@example.com" {
		t.Errorf("ReplyTo = %q", msg.ReplyTo)
	}
	if msg.Subject != "[Join] Sam Lee" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "State U") {
		t.Error("expected university in body")
	}
	if strings.Contains(msg.HTML, "Program") {
		t.Error("empty fields should be omitted")
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("submission values must be escaped")
	}
}
