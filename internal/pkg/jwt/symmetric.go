package jwt

import (
	"errors"
	"fmt"
	"strconv"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const minHS512SecretLen = 64

// Symmetric signs access tokens with one shared HS512 secret. Issuer,
// audience, expiry and iat are all enforced on Verify.
type Symmetric struct {
	cfg    Config
	parser *libJWT.Parser
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minHS512SecretLen {
		return nil, ErrSigningKeyTooShort
	}

	parser := libJWT.NewParser(
		libJWT.WithIssuer(cfg.Issuer),
		libJWT.WithAudience(cfg.Audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	)

	return &Symmetric{cfg: cfg, parser: parser}, nil
}

func (s *Symmetric) claimsFor(userID int64, phoneKey string) Claims {
	issued := libJWT.NewNumericDate(s.cfg.Clock.Now())

	return Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: libJWT.NewNumericDate(issued.Add(s.cfg.TTL)),
		},
		UserID:   userID,
		PhoneKey: phoneKey,
	}
}

// Generate returns a token whose sub is the account id.
func (s *Symmetric) Generate(userID int64, phoneKey string) (string, error) {
	token := libJWT.NewWithClaims(libJWT.SigningMethodHS512, s.claimsFor(userID, phoneKey))
	return token.SignedString(s.cfg.Secret)
}

func (s *Symmetric) key(t *libJWT.Token) (any, error) {
	if t.Method != libJWT.SigningMethodHS512 {
		return nil, ErrInvalidSigningMethod
	}
	return s.cfg.Secret, nil
}

// Verify returns ErrTokenExpired for stale tokens and wraps ErrInvalidToken
// around every other rejection.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := s.parser.ParseWithClaims(tokenStr, &claims, s.key)
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case !token.Valid:
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return Claims{}, fmt.Errorf("%w: subject does not match user", ErrInvalidToken)
	}

	return claims, nil
}
