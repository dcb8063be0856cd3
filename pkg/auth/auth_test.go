package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/kv"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

const secret = "test-secret"

// ── helpers ─────────────────────────────────────────────────────────────────

type credStore struct {
	mu    sync.Mutex
	byKey map[string]*auth.Credential
}

func newCredStore() *credStore { return &credStore{byKey: map[string]*auth.Credential{}} }

func (s *credStore) CreateCredential(_ context.Context, c *auth.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byKey {
		if existing.Email == c.Email {
			return auth.ErrEmailTaken
		}
	}
	s.byKey[c.ID] = c
	return nil
}

func (s *credStore) FindCredentialByEmail(_ context.Context, email string) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byKey {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, auth.ErrCredentialNotFound
}

func (s *credStore) FindCredentialByID(_ context.Context, id string) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byKey[id]; ok {
		return c, nil
	}
	return nil, auth.ErrCredentialNotFound
}

// ── Identity ────────────────────────────────────────────────────────────────

func TestIdentityFollowsChanges(t *testing.T) {
	bus := event.New()
	id := auth.NewIdentity()
	off := id.Subscribe(bus)
	defer off()

	assert.False(t, id.IsAuthenticated())
	assert.Equal(t, "", id.AccessToken())

	s := &auth.Session{AccessToken: "a1", User: &auth.User{ID: "u1", Email: "a@b.c"}}
	bus.Fire(auth.EventName, auth.Change{Event: auth.SignedIn, Session: s})
	assert.True(t, id.IsAuthenticated())
	assert.Equal(t, "u1", id.UserID())
	assert.Equal(t, "a1", id.AccessToken())

	bus.Fire(auth.EventName, auth.Change{Event: auth.UserUpdated, Session: &auth.Session{User: &auth.User{ID: "u1", Email: "new@b.c"}}})
	assert.Equal(t, "new@b.c", id.User().Email)
	assert.Equal(t, "a1", id.AccessToken(), "user update keeps the token")

	bus.Fire(auth.EventName, auth.Change{Event: auth.TokenRefreshed, Session: &auth.Session{AccessToken: "a2", User: s.User}})
	assert.Equal(t, "a2", id.AccessToken())

	bus.Fire(auth.EventName, auth.Change{Event: auth.SignedOut})
	assert.False(t, id.IsAuthenticated())
	assert.Nil(t, id.Session())
}

func TestInitialSessionWithoutUser(t *testing.T) {
	id := auth.NewIdentity()
	id.Apply(auth.Change{Event: auth.SignedIn, Session: &auth.Session{AccessToken: "x", User: &auth.User{ID: "u"}}})
	id.Apply(auth.Change{Event: auth.InitialSession})
	assert.False(t, id.IsAuthenticated())
}

// ── JWT ─────────────────────────────────────────────────────────────────────

func TestIssueAndVerify(t *testing.T) {
	u := &auth.User{ID: "11111111-2222-3333-4444-555555555555", Email: "a@b.c"}
	tok, err := auth.IssueToken(secret, u, "access", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := auth.VerifyToken(secret, tok)
	require.NoError(t, err)
	got := auth.UserFromClaims(claims)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@b.c", got.Email)
	assert.Equal(t, "authenticated", got.Role)

	_, err = auth.VerifyToken("other", tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	u := &auth.User{ID: "u1"}
	tok, err := auth.IssueToken(secret, u, "access", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = auth.VerifyToken(secret, tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// ── Local provider ──────────────────────────────────────────────────────────

func TestLocalLifecycle(t *testing.T) {
	ctx := context.Background()
	p := auth.NewLocal(newCredStore(), secret)

	s, err := p.SignUp(ctx, " Shopper@Example.com ", "hunter22", map[string]interface{}{"full_name": "Shopper"})
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)
	assert.Equal(t, "shopper@example.com", s.User.Email)

	_, err = p.SignUp(ctx, "shopper@example.com", "again", nil)
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, err = p.SignIn(ctx, "shopper@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	in, err := p.SignIn(ctx, "SHOPPER@example.com", "hunter22")
	require.NoError(t, err)

	u, err := p.GetUser(ctx, in.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, u.ID)

	_, err = p.GetUser(ctx, in.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "refresh token is not an access token")

	again, err := p.Refresh(ctx, in.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, again.User.ID)

	_, err = p.Refresh(ctx, in.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// ── GoTrue ──────────────────────────────────────────────────────────────────

const base = "https://demo.supabase.co"

func TestGoTrueSignIn(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.On("POST", base+"/auth/v1/token").Reply(200, `{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"u1","email":"a@b.c"}}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	s, err := auth.NewGoTrue(base, "anon", "").SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "u1", s.User.ID)
	assert.NotZero(t, s.ExpiresAt)

	call := mt.LastCall()
	assert.Contains(t, call.URL, "grant_type=password")
	assert.Equal(t, "anon", call.Header.Get("apikey"))
	var body map[string]string
	testkit.DecodeBody(t, call, &body)
	assert.Equal(t, "a@b.c", body["email"])
}

func TestGoTrueBadCredentials(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.On("POST", base+"/auth/v1/token").Reply(400, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	_, err := auth.NewGoTrue(base, "anon", "").SignIn(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.True(t, auth.IsAuthError(err))
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestGoTrueSignUpNeedsConfirmation(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.On("POST", base+"/auth/v1/signup").Reply(200, `{"id":"u9","email":"new@b.c"}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	s, err := auth.NewGoTrue(base, "anon", "").SignUp(context.Background(), "new@b.c", "pw", nil)
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken)
	assert.Equal(t, "u9", s.User.ID)
}

func TestGoTrueGetUserVerifiesLocally(t *testing.T) {
	mt := testkit.NewMockTransport().Strict()
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	tok, err := auth.IssueToken(secret, &auth.User{ID: "u1", Email: "a@b.c"}, "access", time.Hour, time.Now())
	require.NoError(t, err)

	u, err := auth.NewGoTrue(base, "anon", secret).GetUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Empty(t, mt.Calls(), "no round trip when the secret is known")
}

func TestGoTrueGetUserFallsBackToServer(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.On("GET", base+"/auth/v1/user").Reply(200, `{"id":"u2","email":"x@y.z"}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	u, err := auth.NewGoTrue(base, "anon", "").GetUser(context.Background(), "opaque")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, "Bearer opaque", mt.LastCall().Header.Get("Authorization"))
}

// ── Manager ─────────────────────────────────────────────────────────────────

func TestManagerPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	box, err := crypt.New("app-key")
	require.NoError(t, err)
	store := auth.KVSessionStore{Store: kv.NewMemory(), Box: box}
	provider := auth.NewLocal(newCredStore(), secret)

	bus := event.New()
	var seen []string
	bus.Listen(auth.EventName, func(p interface{}) { seen = append(seen, p.(auth.Change).Event) })

	m := auth.NewManager(provider, bus, store)
	_, err = m.SignUp(ctx, "a@b.c", "pw123456", nil)
	require.NoError(t, err)
	assert.True(t, m.Identity().IsAuthenticated())

	// a fresh process restores the same user
	bus2 := event.New()
	m2 := auth.NewManager(provider, bus2, store)
	var initial auth.Change
	bus2.Listen(auth.EventName, func(p interface{}) { initial = p.(auth.Change) })
	s := m2.Restore(ctx)
	require.NotNil(t, s)
	assert.Equal(t, auth.InitialSession, initial.Event)
	assert.Equal(t, m.Identity().UserID(), m2.Identity().UserID())

	require.NoError(t, m2.SignOut(ctx))
	assert.False(t, m2.Identity().IsAuthenticated())

	bus3 := event.New()
	m3 := auth.NewManager(provider, bus3, store)
	assert.Nil(t, m3.Restore(ctx))
	assert.False(t, m3.Identity().IsAuthenticated())

	assert.Equal(t, []string{auth.SignedIn}, seen)
}

func TestManagerRefresh(t *testing.T) {
	ctx := context.Background()
	m := auth.NewManager(auth.NewLocal(newCredStore(), secret), event.New(), nil)

	_, err := m.Refresh(ctx)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	_, err = m.SignUp(ctx, "a@b.c", "pw123456", nil)
	require.NoError(t, err)
	s, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.AccessToken, m.Identity().AccessToken())
}

type failingProvider struct{ auth.Provider }

func (failingProvider) SignOut(context.Context, string) error { return errors.New("network down") }

func TestSignOutClearsEvenIfServerFails(t *testing.T) {
	ctx := context.Background()
	m := auth.NewManager(failingProvider{auth.NewLocal(newCredStore(), secret)}, event.New(), nil)
	_, err := m.SignUp(ctx, "a@b.c", "pw123456", nil)
	require.NoError(t, err)

	err = m.SignOut(ctx)
	assert.Error(t, err)
	assert.False(t, m.Identity().IsAuthenticated())
}
