package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "127.0.0.1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	cases := []struct {
		name   string
		remote string
		xff    string
		xReal  string
		want   string
	}{
		{"untrusted peer ignores forwarding", "203.0.113.9:5555", "1.2.3.4", "5.6.7.8", "203.0.113.9"},
		{"trusted peer uses forwarded client", "10.0.0.5:80", "198.51.100.4", "", "198.51.100.4"},
		{"rightmost untrusted hop wins", "10.0.0.5:80", "1.2.3.4, 198.51.100.4, 10.0.0.7", "", "198.51.100.4"},
		{"all hops trusted", "127.0.0.1:80", "10.1.1.1, 10.2.2.2", "", "10.1.1.1"},
		{"malformed hop stops the walk", "10.0.0.5:80", "junk", "", "10.0.0.5"},
		{"x-real-ip behind proxy", "10.0.0.5:80", "", "198.51.100.8", "198.51.100.8"},
		{"no headers", "10.0.0.5:80", "", "", "10.0.0.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xReal != "" {
				req.Header.Set("X-Real-IP", tc.xReal)
			}
			if got := proxies.ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientIPWithoutProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	if got := TrustedProxies(nil).ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("ClientIP = %q", got)
	}
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	if _, err := ParseTrustedProxies([]string{"10.0.0.0/8", "proxy.internal"}); err == nil {
		t.Fatal("expected error for hostname entry")
	}
}
