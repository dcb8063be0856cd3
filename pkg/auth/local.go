package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential is a locally stored login.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}

// ErrCredentialNotFound is returned by a CredentialStore lookup miss.
var ErrCredentialNotFound = errors.New("auth: credential not found")

// CredentialStore persists local logins. CreateCredential must fail with
// ErrEmailTaken on a duplicate email.
type CredentialStore interface {
	CreateCredential(ctx context.Context, c *Credential) error
	FindCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	FindCredentialByID(ctx context.Context, id string) (*Credential, error)
}

// Local signs users in against a CredentialStore and issues HS256 tokens
// with the same claims the hosted server uses.
type Local struct {
	store  CredentialStore
	secret string
	now    func() time.Time
}

func NewLocal(store CredentialStore, secret string) *Local {
	return &Local{store: store, secret: secret, now: time.Now}
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	c, err := l.store.FindCredentialByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrCredentialNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(c.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return l.issue(credentialUser(c))
}

func (l *Local) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	c := &Credential{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    l.now(),
	}
	if name, ok := metadata["full_name"].(string); ok {
		c.FullName = name
	}
	if err := l.store.CreateCredential(ctx, c); err != nil {
		return nil, err
	}
	return l.issue(credentialUser(c))
}

// SignOut is a no-op: local tokens are stateless and expire on their own.
func (l *Local) SignOut(context.Context, string) error { return nil }

func (l *Local) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	claims, err := VerifyToken(l.secret, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != useRefresh {
		return nil, ErrInvalidToken
	}
	c, err := l.store.FindCredentialByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return l.issue(credentialUser(c))
}

func (l *Local) GetUser(_ context.Context, accessToken string) (*User, error) {
	claims, err := VerifyToken(l.secret, accessToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse == useRefresh {
		return nil, ErrInvalidToken
	}
	return UserFromClaims(claims), nil
}

func (l *Local) issue(u *User) (*Session, error) {
	now := l.now()
	access, err := IssueToken(l.secret, u, useAccess, accessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, err := IssueToken(l.secret, u, useRefresh, refreshTTL, now)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(accessTTL / time.Second),
		ExpiresAt:    now.Add(accessTTL).Unix(),
		User:         u,
	}, nil
}

func credentialUser(c *Credential) *User {
	u := &User{ID: c.ID, Email: c.Email, Role: audience, CreatedAt: c.CreatedAt}
	if c.FullName != "" {
		u.UserMetadata = map[string]interface{}{"full_name": c.FullName}
	}
	return u
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
