package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for public form submissions.
const (
	maxNameLen     = 200
	maxEmailLen    = 254
	maxMessageLen  = 5_000
	maxShortLen    = 200
	maxInterests   = 20
	maxInterestLen = 100
)

// validateEmail checks a single bare address.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Email is not valid."
	}
	return ""
}

// validateName checks the submitter's name.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateContact checks a contact form and returns the first error found.
func validateContact(req contactRequest) string {
	if msg := validateName(req.Name); msg != "" {
		return msg
	}
	if msg := validateEmail(req.Email); msg != "" {
		return msg
	}
	if strings.TrimSpace(req.Message) == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		return "Message is too long (max 5,000 characters)."
	}
	return ""
}

// validateJoin checks a join form and returns the first error found.
func validateJoin(req joinRequest) string {
	if msg := validateName(req.Name); msg != "" {
		return msg
	}
	if msg := validateEmail(req.Email); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(req.University) > maxShortLen {
		return "University is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(req.Program) > maxShortLen {
		return "Program is too long (max 200 characters)."
	}
	if len(req.Interests) > maxInterests {
		return "Too many interests (max 20)."
	}
	for _, in := range req.Interests {
		if utf8.RuneCountInString(in) > maxInterestLen {
			return "Interest is too long (max 100 characters)."
		}
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		return "Message is too long (max 5,000 characters)."
	}
	return ""
}
