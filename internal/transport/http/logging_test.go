package http

import (
	"strings"
	"testing"
)

func TestSanitizeBodyRedactsJSONSecrets(t *testing.T) {
	body := []byte(`{"email":"user@example.com","password":"secret1","otp":"1234","nested":{"new_password":"abc123"}}`)

	out, ok := sanitizeBody(body, "application/json").(map[string]any)
	if !ok {
		t.Fatalf("expected a map summary, got %T", out)
	}
	if out["email"] != "user@example.com" {
		t.Fatalf("email should pass through, got %v", out["email"])
	}
	if out["password"] != "redacted" {
		t.Fatalf("password should be redacted, got %v", out["password"])
	}
	if out["otp"] != "redacted" {
		t.Fatalf("otp should be redacted, got %v", out["otp"])
	}
	nested, ok := out["nested"].(map[string]any)
	if !ok || nested["new_password"] != "redacted" {
		t.Fatalf("nested password should be redacted, got %v", out["nested"])
	}
}

func TestSanitizeBodyRedactsFormSecrets(t *testing.T) {
	body := []byte("email=user%40example.com&password=secret1")

	out, ok := sanitizeBody(body, "application/x-www-form-urlencoded").(map[string]any)
	if !ok {
		t.Fatalf("expected a map summary, got %T", out)
	}
	if out["password"] != "redacted" {
		t.Fatalf("password should be redacted, got %v", out["password"])
	}
}

func TestSanitizeBodyBinaryAndTruncation(t *testing.T) {
	if out := sanitizeBody([]byte{0xff, 0xfe, 0x00}, ""); out != "binary" {
		t.Fatalf("expected binary marker, got %v", out)
	}

	long := strings.Repeat("a", maxLoggedBody+10)
	out, ok := sanitizeBody([]byte(long), "text/plain").(string)
	if !ok || !strings.HasSuffix(out, "...(truncated)") {
		t.Fatalf("expected truncated string, got %v", out)
	}
}

func TestSanitizeBodyEmpty(t *testing.T) {
	if out := sanitizeBody(nil, "application/json"); out != nil {
		t.Fatalf("expected nil for empty body, got %v", out)
	}
}
