package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims mirrors the access-token payload issued by the hosted auth
// server, so tokens from either provider verify the same way.
type Claims struct {
	Email        string                 `json:"email,omitempty"`
	Phone        string                 `json:"phone,omitempty"`
	Role         string                 `json:"role,omitempty"`
	TokenUse     string                 `json:"token_use,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

const (
	audience      = "authenticated"
	useAccess     = "access"
	useRefresh    = "refresh"
	accessTTL     = time.Hour
	refreshTTL    = 30 * 24 * time.Hour
	defaultIssuer = "storefront"
)

// IssueToken signs an HS256 token for user.
func IssueToken(secret string, u *User, use string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         audience,
		TokenUse:     use,
		UserMetadata: u.UserMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    defaultIssuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken checks an HS256 token signed with secret and returns its
// claims.
func VerifyToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserFromClaims builds the User a verified access token describes.
func UserFromClaims(c *Claims) *User {
	u := &User{
		ID:           c.Subject,
		Email:        c.Email,
		Phone:        c.Phone,
		Role:         c.Role,
		UserMetadata: c.UserMetadata,
	}
	if c.IssuedAt != nil {
		u.CreatedAt = c.IssuedAt.Time
	}
	return u
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash against the candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
