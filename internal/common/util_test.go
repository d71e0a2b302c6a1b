package common

import (
	"errors"
	"fmt"
	"testing"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	if string(a) == string(b) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- token errors ----------

func TestTokenErrors_AllMatchInvalidToken(t *testing.T) {
	for _, err := range []error{ErrTokenMalformed, ErrTokenExpired, ErrTokenSubjectInvalid} {
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%v should match ErrInvalidToken", err)
		}
	}
	if errors.Is(ErrTokenExpired, ErrTokenMalformed) {
		t.Fatal("expired must not match malformed")
	}
}

func TestTokenFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrTokenExpired, "expired"},
		{fmt.Errorf("verify: %w", ErrTokenExpired), "expired"},
		{ErrTokenMalformed, "malformed"},
		{ErrTokenSubjectInvalid, "subject_invalid"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := TokenFailureKind(tt.err); got != tt.want {
			t.Fatalf("TokenFailureKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
