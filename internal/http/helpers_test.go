package http

import (
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"Bearer abc":        "abc",
		"bearer abc":        "abc",
		"BEARER abc":        "abc",
		"Basic abc":         "",
		"Bearer":            "",
		"Bearer  spaced ":   "spaced",
		"Bearer a b":        "a b",
		"Token abc":         "",
		"Bearer abc.def.gh": "abc.def.gh",
	}
	for header, expect := range cases {
		if got := bearerToken(header); got != expect {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, expect)
		}
	}
}

func TestValidUUID(t *testing.T) {
	if !validUUID("3d3c41c4-19ce-49a9-a86f-8a86ea199cc0") {
		t.Fatalf("expected canonical uuid to be valid")
	}
	for _, bad := range []string{"", "not-a-uuid", "3d3c41c4-19ce-49a9-a86f"} {
		if validUUID(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestParseLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/dashboard?limit=3", nil)
	if got := parseLimit(r, 5); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	r = httptest.NewRequest("GET", "/api/dashboard", nil)
	if got := parseLimit(r, 5); got != 5 {
		t.Fatalf("expected fallback 5, got %d", got)
	}
	r = httptest.NewRequest("GET", "/api/dashboard?limit=-2", nil)
	if got := parseLimit(r, 5); got != 5 {
		t.Fatalf("expected fallback for negative limit, got %d", got)
	}
	r = httptest.NewRequest("GET", "/api/dashboard?limit=abc", nil)
	if got := parseLimit(r, 5); got != 5 {
		t.Fatalf("expected fallback for junk limit, got %d", got)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:45822"
	if got := clientIP(r); got != "10.1.2.3" {
		t.Fatalf("expected remote host, got %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
