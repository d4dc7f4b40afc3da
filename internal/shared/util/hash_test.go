package util

import (
	"testing"
)

func TestSHA256HexDeterministic(t *testing.T) {
	a := SHA256Hex([]byte("estado de cuenta enero"))
	b := SHA256Hex([]byte("estado de cuenta enero"))
	if a != b {
		t.Fatalf("identical inputs produced different digests: %s vs %s", a, b)
	}
	if !IsSHA256Hex(a) {
		t.Fatalf("digest %q is not 64 lowercase hex chars", a)
	}
}

func TestSHA256HexDistinctInputs(t *testing.T) {
	a := SHA256Hex([]byte("estado de cuenta enero"))
	b := SHA256Hex([]byte("estado de cuenta febrero"))
	if a == b {
		t.Fatalf("distinct inputs produced the same digest: %s", a)
	}
}

func TestIsSHA256Hex(t *testing.T) {
	if IsSHA256Hex("ABC") {
		t.Fatal("short uppercase string accepted")
	}
	if IsSHA256Hex(SHA256Hex([]byte("x")) + "0") {
		t.Fatal("65-char string accepted")
	}
}
