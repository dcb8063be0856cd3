package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/http"
)

// Provider authenticates users and mints sessions.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp may return a session with only User set when the server
	// requires email confirmation before the first sign in.
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	// GetUser resolves an access token to its user.
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

// GoTrue is the hosted auth API under <project>/auth/v1.
type GoTrue struct {
	baseURL   string
	apiKey    string
	jwtSecret string
	timeout   time.Duration
	now       func() time.Time
}

// NewGoTrue returns a client for the project at baseURL. When jwtSecret is
// set, GetUser verifies tokens locally before asking the server.
func NewGoTrue(baseURL, apiKey, jwtSecret string) *GoTrue {
	return &GoTrue{
		baseURL:   strings.TrimRight(baseURL, "/") + "/auth/v1",
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		timeout:   http.DefaultTimeout,
		now:       time.Now,
	}
}

func (g *GoTrue) request(method, path string) *http.Request {
	return http.NewRequest(method, g.baseURL+path).
		Header("apikey", g.apiKey).
		Bearer(g.apiKey).
		Timeout(g.timeout)
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return g.tokenGrant(ctx, "password", map[string]string{"email": email, "password": password})
}

func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	return g.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (g *GoTrue) tokenGrant(ctx context.Context, grant string, body interface{}) (*Session, error) {
	resp, err := g.request("POST", "/token").
		Query("grant_type", grant).
		WithContext(ctx).
		Body(body).
		Send()
	if err != nil {
		return nil, fmt.Errorf("auth: token: %w", err)
	}
	if !resp.OK() {
		return nil, decodeAuthError(resp)
	}

	var s Session
	if err := resp.JSON(&s); err != nil {
		return nil, err
	}
	s.normalize(g.now())
	return &s, nil
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error) {
	payload := map[string]interface{}{"email": email, "password": password}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	resp, err := g.request("POST", "/signup").WithContext(ctx).Body(payload).Send()
	if err != nil {
		return nil, fmt.Errorf("auth: signup: %w", err)
	}
	if !resp.OK() {
		return nil, decodeAuthError(resp)
	}

	// With autoconfirm the body is a session, otherwise the bare user.
	var s Session
	if err := resp.JSON(&s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		var u User
		if err := resp.JSON(&u); err != nil {
			return nil, err
		}
		return &Session{User: &u}, nil
	}
	s.normalize(g.now())
	return &s, nil
}

func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	resp, err := g.request("POST", "/logout").Bearer(accessToken).WithContext(ctx).Send()
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	// An already revoked token still counts as signed out.
	if !resp.OK() && resp.StatusCode != 401 && resp.StatusCode != 404 {
		return decodeAuthError(resp)
	}
	return nil
}

func (g *GoTrue) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	if g.jwtSecret != "" {
		if claims, err := VerifyToken(g.jwtSecret, accessToken); err == nil {
			return UserFromClaims(claims), nil
		}
	}

	resp, err := g.request("GET", "/user").Bearer(accessToken).WithContext(ctx).Send()
	if err != nil {
		return nil, fmt.Errorf("auth: user: %w", err)
	}
	if !resp.OK() {
		return nil, decodeAuthError(resp)
	}
	var u User
	if err := resp.JSON(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// decodeAuthError understands both the OAuth style body
// ({"error","error_description"}) and the newer {"code","error_code","msg"}.
func decodeAuthError(resp *http.Response) error {
	var body struct {
		Error       string          `json:"error"`
		Description string          `json:"error_description"`
		ErrorCode   string          `json:"error_code"`
		Msg         string          `json:"msg"`
		Message     string          `json:"message"`
		Code        json.RawMessage `json:"code"`
	}
	_ = json.Unmarshal(resp.Raw, &body)

	e := &Error{Status: resp.StatusCode}
	switch {
	case body.ErrorCode != "":
		e.Code = body.ErrorCode
	case body.Error != "":
		e.Code = body.Error
	}
	for _, m := range []string{body.Description, body.Msg, body.Message} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(resp.Text())
	}
	return e
}
