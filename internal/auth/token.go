package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload of the session token.
type Claims struct {
	UserID               uint `json:"id"`
	IsSuperAdmin         bool `json:"isSuperAdmin"`
	jwt.RegisteredClaims
}

// SignToken creates a signed session token bound to the user's id and
// super-admin flag, expiring after ttl.
func SignToken(userID uint, isSuperAdmin bool, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:       userID,
		IsSuperAdmin: isSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a session token and
// returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
