package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"vocabtrainer/internal/validation"
)

const maxJSONBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// decodeJSON reads a single JSON object into dst and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := readJSON(w, r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return validation.FieldErrors{"body": "request body is too large"}
		}
		return validation.FieldErrors{"body": fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// profileName identifies the student a request acts for. Profiles are
// keyed by name; the header wins over the query parameter.
func profileName(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.Header.Get("X-Profile"))
	if name == "" {
		name = strings.TrimSpace(r.URL.Query().Get("user"))
	}
	if err := validation.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
