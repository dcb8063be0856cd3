package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// AuthController exchanges credentials for sessions. The server keeps no
// session of its own; clients send the access token as a bearer token.
type AuthController struct {
	provider auth.Provider
}

func NewAuthController(p auth.Provider) *AuthController {
	return &AuthController{provider: p}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := c.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		authFail(w, r, err)
		return
	}
	response.Notice(w, http.StatusOK, "Signed in", s)
}

// Signup creates an account. When the backend wants the email confirmed
// first, the response has the user but no tokens.
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}
	var meta map[string]interface{}
	if name := strings.TrimSpace(req.FullName); name != "" {
		meta = map[string]interface{}{"full_name": name}
	}

	s, err := c.provider.SignUp(r.Context(), req.Email, req.Password, meta)
	if err != nil {
		authFail(w, r, err)
		return
	}
	notice := "Account created"
	if s.AccessToken == "" {
		notice = "Check your email to confirm the account"
	}
	response.Notice(w, http.StatusCreated, notice, s)
}

// Logout revokes the bearer token upstream. It always succeeds locally.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())
	if token := id.AccessToken(); token != "" {
		if err := c.provider.SignOut(r.Context(), token); err != nil {
			logger.WithCtx(r.Context()).Warn("auth: sign out failed upstream", "error", err)
		}
	}
	response.Notice(w, http.StatusOK, "Signed out", nil)
}

func authFail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrEmailTaken):
		response.ValidationError(w, map[string]string{"email": "is already registered"})
	default:
		logger.WithCtx(r.Context()).Error("auth: provider failed", "error", err)
		response.Error(w, http.StatusBadGateway, "Sign in is unavailable right now. Please try again.")
	}
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Sign in</title></head>
<body><div class="notice">
<h3>Please sign in first</h3>
<p>POST your email and password as JSON to <code>/api/login</code>, then send the returned
<code>access_token</code> as <code>Authorization: Bearer &lt;token&gt;</code>.</p>
{{if .}}<p>You will be returned to <code>{{.}}</code>.</p>{{end}}
</div></body></html>`))

// LoginPage is where the auth gate redirects page requests.
func (c *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = ""
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginPage.Execute(w, next) //nolint:errcheck
}
