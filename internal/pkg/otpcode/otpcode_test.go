package otpcode

import (
	"strconv"
	"testing"
)

func TestRandom_Generate(t *testing.T) {
	gen := NewRandom()
	seen := make(map[string]struct{})

	for range 500 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != Length {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
		seen[code] = struct{}{}
	}

	if len(seen) < 400 {
		t.Fatalf("expected mostly distinct codes, got %d unique of 500", len(seen))
	}
}
