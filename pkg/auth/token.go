package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tatame/tatame-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodRS256

var (
	ErrMissingSubject        = errors.New("session token has no subject")
	ErrUnauthorizedParty     = errors.New("session token issued for an unknown party")
	ErrVerifierNotConfigured = errors.New("session verifier is not configured")
)

// Verifier checks identity-provider session tokens offline against the
// provider's public key.
type Verifier struct {
	key     *rsa.PublicKey
	cfg     config.IdentityConfig
	parties []string
}

// NewVerifier parses the configured PEM public key.
func NewVerifier(cfg config.IdentityConfig) (*Verifier, error) {
	pem := strings.TrimSpace(strings.ReplaceAll(cfg.JWTPublicKey, `\n`, "\n"))
	if pem == "" {
		return nil, fmt.Errorf("identity jwt public key is required")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("parsing identity public key: %w", err)
	}
	parties := make([]string, 0, len(cfg.AuthorizedParties))
	for _, p := range cfg.AuthorizedParties {
		if p = strings.TrimSpace(p); p != "" {
			parties = append(parties, p)
		}
	}
	return &Verifier{key: key, cfg: cfg, parties: parties}, nil
}

// Verify validates the token string and returns typed claims.
func (v *Verifier) Verify(tokenString string) (*SessionClaims, error) {
	if v == nil || v.key == nil {
		return nil, ErrVerifierNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.ClockSkew),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return v.key, nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return nil, ErrUnauthorizedParty
	}
	return claims, nil
}
