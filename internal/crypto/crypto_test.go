package crypto_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gsarma/judgerun/internal/crypto"
)

func newSealer(t *testing.T) *crypto.Sealer {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	s, err := crypto.NewSealer(key)
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newSealer(t)
	sealed, err := s.Seal("rapidapi-key-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, "rapidapi") {
		t.Error("sealed value must not contain the plaintext")
	}
	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != "rapidapi-key-123" {
		t.Errorf("expected round trip, got %q", got)
	}
}

func TestSealer_Empty(t *testing.T) {
	s := newSealer(t)
	sealed, err := s.Seal("")
	if err != nil || sealed != "" {
		t.Fatalf("expected empty seal, got %q, %v", sealed, err)
	}
	got, err := s.Open("")
	if err != nil || got != "" {
		t.Fatalf("expected empty open, got %q, %v", got, err)
	}
}

func TestSealer_WrongKey(t *testing.T) {
	sealed, err := newSealer(t).Seal("secret")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := newSealer(t).Open(sealed); err == nil {
		t.Error("expected error opening with a different key")
	}
}

func TestSealer_TooShort(t *testing.T) {
	if _, err := newSealer(t).Open("AAAA"); !errors.Is(err, crypto.ErrCiphertextTooShort) {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestNewSealer_InvalidKey(t *testing.T) {
	for _, key := range []string{"not-hex", "abcd"} {
		if _, err := crypto.NewSealer(key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}
