package accounts

import (
	"math/rand"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestRandomAccountNumberRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		n := randomAccountNumber(rand.New(rand.NewSource(seed)))
		if len(n) != 8 {
			t.Fatalf("number %q: want 8 digits", n)
		}
		if n[0] == '0' {
			t.Fatalf("number %q: leading zero", n)
		}
	})
}

func TestHashAccountNumber(t *testing.T) {
	h := hashAccountNumber("12345678")
	if len(h) != 64 {
		t.Fatalf("hash length = %d, want 64", len(h))
	}
	if h != strings.ToUpper(h) {
		t.Fatalf("hash %q is not uppercase", h)
	}
	if h2 := hashAccountNumber("12345678"); h2 != h {
		t.Fatal("hash is not stable for the same number")
	}
	if h2 := hashAccountNumber("87654321"); h2 == h {
		t.Fatal("distinct numbers collided")
	}
}
