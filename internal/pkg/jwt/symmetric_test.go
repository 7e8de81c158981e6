package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
)

func newTestJWT(t *testing.T, clk *clock.Frozen) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "smsauth",
		Audiences: []string{"smsauth-api"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return j
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	// Arrange
	clk := clock.NewFrozen(time.Now())
	j := newTestJWT(t, clk)

	// Act
	token, err := j.Generate(42, "998901234567")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := j.Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 || claims.Subject != "42" || claims.PhoneKey != "998901234567" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	ctx := SetAuth(context.Background(), claims)
	if got := GetAuth(ctx); got == nil || got.UserID != 42 {
		t.Fatalf("GetAuth() = %+v", got)
	}
}

func TestSymmetric_Expired(t *testing.T) {
	clk := clock.NewFrozen(time.Now())
	j := newTestJWT(t, clk)

	token, err := j.Generate(1, "998901234567")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	clk.Advance(16 * time.Minute)

	if _, err := j.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestGetAuth_Empty(t *testing.T) {
	if GetAuth(context.Background()) != nil {
		t.Fatalf("expected nil claims on empty context")
	}
}

func TestSymmetric_Rejects(t *testing.T) {
	clk := clock.NewFrozen(time.Now())
	j := newTestJWT(t, clk)
	token, err := j.Generate(7, "998901234567")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	other, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("x", 64)),
		Issuer:    "smsauth",
		Audiences: []string{"smsauth-api"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
		by    *Symmetric
	}{
		{name: "garbage", token: "not.a.token", by: j},
		{name: "tampered payload", token: token[:len(token)-2] + "xx", by: j},
		{name: "foreign secret", token: token, by: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.by.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
