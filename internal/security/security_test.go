package security

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request in window should be blocked")
	}
	if !rl.Allow("b") {
		t.Error("other keys have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(3 * time.Minute)
	if removed := rl.Prune(); removed != 2 {
		t.Errorf("Prune() removed %d, want 2", removed)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		if !rl.Allow("a") {
			t.Fatal("zero rate should never block")
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.1"}, "10.0.0.2:1234", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "2.2.2.2"}, "10.0.0.2:1234", "2.2.2.2"},
		{"remote addr", nil, "3.3.3.3:5678", "3.3.3.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPasswordGate(t *testing.T) {
	gate, err := NewPasswordGate("secret")
	if err != nil {
		t.Fatalf("NewPasswordGate() error = %v", err)
	}
	if err := gate.Check("secret"); err != nil {
		t.Errorf("Check(correct) = %v", err)
	}
	if err := gate.Check("nope"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Check(wrong) = %v, want ErrWrongPassword", err)
	}

	empty, _ := NewPasswordGate("")
	if err := empty.Check(""); !errors.Is(err, ErrGateNotConfigured) {
		t.Errorf("Check on unconfigured gate = %v, want ErrGateNotConfigured", err)
	}
}

func TestTokenIssuer(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, expiresAt, err := issuer.Issue("user-1", "teacher")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "teacher" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewTokenIssuer("other-secret", time.Hour)
	other.now = issuer.now
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse with wrong secret = %v, want ErrInvalidToken", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse of expired token = %v, want ErrInvalidToken", err)
	}
}
