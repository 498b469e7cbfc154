// internal/app/system/token/token.go
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "coursedeck"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the identity payload embedded in every access token. DBName
// pins the token to one tenant database so a request can never be routed
// to another tenant's data, even if the caller tampers with headers.
type Claims struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	OrgID    string `json:"orgId,omitempty"`
	DBName   string `json:"dbName,omitempty"`
	SubOrgID string `json:"subOrgId,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	expiry time.Duration
}

// NewCodec builds a Codec. expiry is the lifetime of signed tokens.
func NewCodec(secret string, expiry time.Duration) *Codec {
	return &Codec{secret: []byte(secret), expiry: expiry}
}

// Sign issues a token for the given identity fields. The registered
// claims (issuer, iat, exp) are filled in here.
func (c *Codec) Sign(userID, role, orgID, dbName, subOrgID string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		OrgID:    orgID,
		DBName:   dbName,
		SubOrgID: subOrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token string, enforcing the HS256 method
// and our issuer. Expired tokens return ErrExpiredToken; everything else
// invalid returns ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
