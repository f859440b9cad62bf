package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "blogapi/internal/errors"
)

// TokenExpiry is the lifetime of a session token. There is no refresh or
// revocation path; logout is client-side token discard.
const TokenExpiry = 2 * time.Hour

// Claims is the session token payload.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies stateless HS256 session tokens.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a JWT service signing with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// Generate issues a signed token for the user, expiring after TokenExpiry.
func (s *JWTService) Generate(userID uint, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token. Bad signature, malformed structure and
// expiry all collapse into ErrInvalidToken so callers cannot probe which
// check failed.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
