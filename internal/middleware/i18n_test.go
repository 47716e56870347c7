package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name    string
		xLocale string
		accept  string
		country string
		want    string
	}{
		{name: "explicit header wins", xLocale: "ko", accept: "en-US", want: "ko"},
		{name: "accept language korean", accept: "ko-KR,ko;q=0.9", want: "ko"},
		{name: "accept language english", accept: "en-GB,en;q=0.8", want: "en"},
		{name: "unsupported falls back to english", accept: "fr-FR", want: "en"},
		{name: "country korea", country: "KR", want: "ko"},
		{name: "no signals", want: "en"},
		{name: "garbage explicit header", xLocale: "!!", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xLocale != "" {
				r.Header.Set("X-Locale", tt.xLocale)
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := detectLocale(r, "", tt.country); got != tt.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.10:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.2")

	if got := ClientIP(r); got != "203.0.113.1" {
		t.Fatalf("ClientIP() = %q, want 203.0.113.1", got)
	}
}
