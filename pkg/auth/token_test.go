package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tatame/tatame-backend/pkg/config"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, string(block)
}

func sign(t *testing.T, priv *rsa.PrivateKey, claims SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func validClaims(now time.Time) SessionClaims {
	return SessionClaims{
		AuthorizedParty: "https://app.tatame.dev",
		SessionID:       "sess_1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2abc",
			Issuer:    "https://clerk.tatame.dev",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
}

func TestVerifierAcceptsValidToken(t *testing.T) {
	priv, pub := newKeyPair(t)
	verifier, err := NewVerifier(config.IdentityConfig{
		JWTPublicKey:      pub,
		Issuer:            "https://clerk.tatame.dev",
		AuthorizedParties: []string{"https://app.tatame.dev"},
	})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	claims, err := verifier.Verify(sign(t, priv, validClaims(time.Now())))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user_2abc" || claims.SessionID != "sess_1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifierRejectsBadTokens(t *testing.T) {
	priv, pub := newKeyPair(t)
	otherPriv, _ := newKeyPair(t)
	verifier, err := NewVerifier(config.IdentityConfig{
		JWTPublicKey:      pub,
		Issuer:            "https://clerk.tatame.dev",
		AuthorizedParties: []string{"https://app.tatame.dev"},
	})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	now := time.Now()

	expired := validClaims(now.Add(-time.Hour))
	wrongIssuer := validClaims(now)
	wrongIssuer.Issuer = "https://evil.example"
	wrongParty := validClaims(now)
	wrongParty.AuthorizedParty = "https://evil.example"
	noSubject := validClaims(now)
	noSubject.Subject = ""

	hsToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(now)).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}

	cases := map[string]string{
		"expired":      sign(t, priv, expired),
		"wrong issuer": sign(t, priv, wrongIssuer),
		"wrong party":  sign(t, priv, wrongParty),
		"no subject":   sign(t, priv, noSubject),
		"other key":    sign(t, otherPriv, validClaims(now)),
		"hs256":        hsToken,
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := verifier.Verify(token); err == nil {
				t.Fatalf("expected %s token to be rejected", name)
			}
		})
	}

	if _, err := verifier.Verify(sign(t, priv, noSubject)); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestNewVerifierRequiresKey(t *testing.T) {
	if _, err := NewVerifier(config.IdentityConfig{}); err == nil {
		t.Fatal("expected missing key to fail")
	}
	if _, err := NewVerifier(config.IdentityConfig{JWTPublicKey: "nope"}); err == nil {
		t.Fatal("expected malformed key to fail")
	}
}

func TestNilVerifier(t *testing.T) {
	var v *Verifier
	if _, err := v.Verify("x"); !errors.Is(err, ErrVerifierNotConfigured) {
		t.Fatalf("expected ErrVerifierNotConfigured, got %v", err)
	}
}
