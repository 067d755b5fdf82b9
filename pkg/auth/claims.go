package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by an identity-provider session token.
// The subject is the identity id stored on models.User.IdentityID.
type SessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}
