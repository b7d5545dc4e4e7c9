package handlers

import (
	"strings"
	"testing"
)

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name      string
		req       contactRequest
		wantError bool
	}{
		{"valid", contactRequest{Name: "Ana", Email: "ana@example.com", Message: "Hello"}, false},
		{"empty name", contactRequest{Name: "", Email: "ana@example.com", Message: "Hello"}, true},
		{"whitespace name", contactRequest{Name: "   ", Email: "ana@example.com", Message: "Hello"}, true},
		{"name too long", contactRequest{Name: strings.Repeat("a", 201), Email: "ana@example.com", Message: "Hello"}, true},
		{"missing email", contactRequest{Name: "Ana", Message: "Hello"}, true},
		{"display-name email", contactRequest{Name: "Ana", Email: "Ana <ana@example.com>", Message: "Hello"}, true},
		{"empty message", contactRequest{Name: "Ana", Email: "ana@example.com"}, true},
		{"message too long", contactRequest{Name: "Ana", Email: "ana@example.com", Message: strings.Repeat("a", 5_001)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateContact(tt.req)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateJoin(t *testing.T) {
	base := joinRequest{Name: "Ion", Email: "ion@example.com"}

	tests := []struct {
		name      string
		mutate    func(*joinRequest)
		wantError bool
	}{
		{"minimal", func(*joinRequest) {}, false},
		{"optional message allowed", func(r *joinRequest) { r.Message = "" }, false},
		{"university too long", func(r *joinRequest) { r.University = strings.Repeat("u", 201) }, true},
		{"program too long", func(r *joinRequest) { r.Program = strings.Repeat("p", 201) }, true},
		{"too many interests", func(r *joinRequest) { r.Interests = make([]string, 21) }, true},
		{"interest too long", func(r *joinRequest) { r.Interests = []string{strings.Repeat("i", 101)} }, true},
		{"missing email", func(r *joinRequest) { r.Email = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			result := validateJoin(req)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
