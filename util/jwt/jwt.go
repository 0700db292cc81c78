package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller extracted from a token.
type Identity struct {
	UserID string
	Role   string
}

func Issue(secret string, userID string, role string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuth verifies an Authorization header value ("Bearer <token>" or a
// bare token) and returns the identity it carries.
func ParseAuth(authHeader string, secret string) (*Identity, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if tokenStr == "" {
		return nil, errors.New("missing authorization")
	}
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return FromClaims(mc)
}

// FromClaims extracts the identity from already-verified claims.
func FromClaims(mc jwt.MapClaims) (*Identity, error) {
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("sub missing in claims")
	}
	role, ok := mc["role"].(string)
	if !ok || role == "" {
		return nil, errors.New("role missing in claims")
	}
	return &Identity{UserID: sub, Role: role}, nil
}
