package password

import (
	"errors"
	"testing"
)

func historyOf(t *testing.T, hasher *Argon2, plaintexts ...string) []string {
	t.Helper()

	out := make([]string, 0, len(plaintexts))
	for _, p := range plaintexts {
		hash, err := hasher.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) error: %v", p, err)
		}
		out = append(out, hash)
	}
	return out
}

func TestMatchesAnyFindsReuse(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	history := historyOf(t, hasher, "first-password", "second-password", "third-password")

	for _, reused := range []string{"first-password", "second-password", "third-password"} {
		match, err := MatchesAny(hasher, reused, history)
		if err != nil {
			t.Fatalf("MatchesAny(%q) error: %v", reused, err)
		}
		if !match {
			t.Fatalf("expected %q to match history", reused)
		}
	}
}

func TestMatchesAnyFreshPassword(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	history := historyOf(t, hasher, "first-password", "second-password")

	match, err := MatchesAny(hasher, "brand-new-password", history)
	if err != nil {
		t.Fatalf("MatchesAny error: %v", err)
	}
	if match {
		t.Fatal("expected fresh password not to match history")
	}
}

func TestMatchesAnyEmptyHistory(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	match, err := MatchesAny(hasher, "whatever-password", nil)
	if err != nil {
		t.Fatalf("MatchesAny error: %v", err)
	}
	if match {
		t.Fatal("expected empty history never to match")
	}
}

func TestMatchesAnyCorruptHistoryEntry(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	history := historyOf(t, hasher, "first-password")
	history = append(history, "corrupt-entry")

	if _, err := MatchesAny(hasher, "candidate-password", history); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash for corrupt history, got %v", err)
	}
}
