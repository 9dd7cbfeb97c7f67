package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bitesofsouth/ordering-backend/pkg/config"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

// Claims identifies the caller derived from a bearer token. Tokens are minted
// by the identity provider; this service only verifies them.
type Claims struct {
	UserID string     `json:"uid"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

var errMissingUserID = errors.New("token has no user id")

// ParseAccessToken verifies the signature and standard claims of a bearer
// token and returns the caller identity.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	if claims.UserID == "" {
		return nil, errMissingUserID
	}
	if claims.Role == "" {
		claims.Role = enums.RoleCustomer
	}
	return claims, nil
}

// IssueAccessToken mints a signed token. Production tokens come from the
// identity provider; this is used by tests and local tooling.
func IssueAccessToken(cfg config.JWTConfig, userID string, role enums.Role, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errMissingUserID
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}
