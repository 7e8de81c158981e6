// Package otpcode produces the numeric one-time codes sent over SMS.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Length is the number of digits in a generated code.
	Length = 6

	lowest = 100000
	span   = 900000
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Random draws codes uniformly from 100000–999999 using crypto/rand.
type Random struct{}

// NewRandom returns the crypto-backed generator.
func NewRandom() *Random {
	return &Random{}
}

// Generate returns a 6-digit code without a leading zero.
func (Random) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("otpcode: read random: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+lowest), nil
}
