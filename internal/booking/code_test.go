package booking

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestRandomCodeAlphabet(t *testing.T) {
	for _, c := range "0OI1" {
		if strings.ContainsRune(codeAlphabet, c) {
			t.Errorf("code alphabet must not contain %q", c)
		}
	}
	if len(codeAlphabet) != 32 {
		t.Fatalf("alphabet length = %d, want 32", len(codeAlphabet))
	}

	for i := 0; i < 100; i++ {
		code, err := randomCode(rand.Reader)
		if err != nil {
			t.Fatalf("randomCode: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestRandomCodeDeterministic(t *testing.T) {
	// Byte value n maps to codeAlphabet[n%32].
	src := bytes.NewReader([]byte{0, 1, 2, 3, 4, 5})
	code, err := randomCode(src)
	if err != nil {
		t.Fatalf("randomCode: %v", err)
	}
	if code != "ABCDEF" {
		t.Errorf("code = %q, want %q", code, "ABCDEF")
	}
}

func TestRandomCodeShortReader(t *testing.T) {
	src := bytes.NewReader([]byte{0, 1})
	if _, err := randomCode(src); err == nil {
		t.Error("expected error from truncated random source")
	}
}
