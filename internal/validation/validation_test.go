package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "alice", false},
		{"with space", "Mary Jane", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"too long", strings.Repeat("a", 41), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

type sampleRequest struct {
	User       string `json:"user" validate:"username"`
	WordCount  int    `json:"wordCount" validate:"min=1,max=20"`
	Difficulty string `json:"difficulty" validate:"oneof=easy medium hard"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sampleRequest{User: "alice", WordCount: 5, Difficulty: "easy"}); err != nil {
		t.Fatalf("Struct(valid) error = %v", err)
	}

	err := Struct(sampleRequest{User: "", WordCount: 0, Difficulty: "impossible"})
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("Struct(invalid) error = %v, want FieldErrors", err)
	}
	for _, field := range []string{"user", "wordCount", "difficulty"} {
		if _, ok := fieldErrs[field]; !ok {
			t.Errorf("missing error for %s in %v", field, fieldErrs)
		}
	}
	if !strings.Contains(fieldErrs["wordCount"], "wordCount") {
		t.Errorf("message should name the json field: %q", fieldErrs["wordCount"])
	}
}
