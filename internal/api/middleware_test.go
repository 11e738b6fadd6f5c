package api

import (
	"net/http/httptest"
	"testing"
)

func TestClientKey(t *testing.T) {
	t.Run("session header wins", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/locks", nil)
		r.Header.Set("X-Session-ID", "sess-a")
		r.Header.Set("X-Forwarded-For", "203.0.113.7")
		if got := clientKey(r); got != "session:sess-a" {
			t.Errorf("clientKey = %q, want %q", got, "session:sess-a")
		}
	})

	t.Run("session query param", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/availability/slots?session_id=sess-b", nil)
		if got := clientKey(r); got != "session:sess-b" {
			t.Errorf("clientKey = %q, want %q", got, "session:sess-b")
		}
	})

	t.Run("forwarded-for falls back to first hop", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/appointments", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		if got := clientKey(r); got != "ip:203.0.113.7" {
			t.Errorf("clientKey = %q, want %q", got, "ip:203.0.113.7")
		}
	})

	t.Run("remote addr last resort", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/locks", nil)
		r.RemoteAddr = "198.51.100.4:52011"
		if got := clientKey(r); got != "ip:198.51.100.4" {
			t.Errorf("clientKey = %q, want %q", got, "ip:198.51.100.4")
		}
	})
}
