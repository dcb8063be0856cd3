package auth

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/kv"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const refreshLeeway = 30 * time.Second

// SessionStore persists the session between runs.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// KVSessionStore seals the session with box and keeps it under
// kv.KeySession.
type KVSessionStore struct {
	Store kv.Store
	Box   *crypt.Box
}

func (k KVSessionStore) Load(ctx context.Context) (*Session, error) {
	var sealed string
	ok, err := k.Store.Get(ctx, kv.KeySession, &sealed)
	if err != nil || !ok {
		return nil, err
	}
	var s Session
	if err := k.Box.OpenJSON(sealed, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (k KVSessionStore) Save(ctx context.Context, s *Session) error {
	sealed, err := k.Box.SealJSON(s)
	if err != nil {
		return err
	}
	return k.Store.Set(ctx, kv.KeySession, sealed)
}

func (k KVSessionStore) Clear(ctx context.Context) error {
	return k.Store.Remove(ctx, kv.KeySession)
}

// Manager runs the session lifecycle and announces every change on the
// dispatcher.
type Manager struct {
	provider Provider
	bus      *event.Dispatcher
	store    SessionStore
	identity *Identity
	now      func() time.Time
}

// NewManager wires a provider to bus. store may be nil for a
// process-only session. The returned manager owns an Identity already
// subscribed to bus.
func NewManager(p Provider, bus *event.Dispatcher, store SessionStore) *Manager {
	m := &Manager{provider: p, bus: bus, store: store, identity: NewIdentity(), now: time.Now}
	m.identity.Subscribe(bus)
	return m
}

// Identity is the identity kept current by this manager.
func (m *Manager) Identity() *Identity { return m.identity }

func (m *Manager) Provider() Provider { return m.provider }

func (m *Manager) emit(ev string, s *Session) {
	m.bus.Fire(EventName, Change{Event: ev, Session: s})
}

// Restore loads the persisted session and fires INITIAL_SESSION. An
// expired session is refreshed first; if that fails the user starts
// signed out.
func (m *Manager) Restore(ctx context.Context) *Session {
	var s *Session
	if m.store != nil {
		loaded, err := m.store.Load(ctx)
		if err != nil {
			logger.WithCtx(ctx).Warn("auth: discarding unreadable session", "error", err)
			_ = m.store.Clear(ctx)
		}
		s = loaded
	}

	if s != nil && s.Expired(m.now(), refreshLeeway) {
		refreshed, err := m.provider.Refresh(ctx, s.RefreshToken)
		if err != nil {
			logger.WithCtx(ctx).Info("auth: stored session expired", "error", err)
			s = nil
			if m.store != nil {
				_ = m.store.Clear(ctx)
			}
		} else {
			s = refreshed
			m.persist(ctx, s)
		}
	}

	m.emit(InitialSession, s)
	return s
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.persist(ctx, s)
	m.emit(SignedIn, s)
	return s, nil
}

// SignUp registers and, when the provider hands back tokens, signs in.
func (m *Manager) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error) {
	s, err := m.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}
	if s.AccessToken != "" {
		m.persist(ctx, s)
		m.emit(SignedIn, s)
	}
	return s, nil
}

// SignOut revokes the token server side when possible and always clears
// the local session.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx, m.identity.AccessToken())
	if m.store != nil {
		if cerr := m.store.Clear(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.emit(SignedOut, nil)
	return err
}

func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	cur := m.identity.Session()
	if cur == nil {
		return nil, ErrNoSession
	}
	s, err := m.provider.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		return nil, err
	}
	m.persist(ctx, s)
	m.emit(TokenRefreshed, s)
	return s, nil
}

// NotifyUserUpdated publishes fresh user details for the current session.
func (m *Manager) NotifyUserUpdated(ctx context.Context, u *User) {
	cur := m.identity.Session()
	if cur == nil || u == nil {
		return
	}
	cur.User = u
	m.persist(ctx, cur)
	m.emit(UserUpdated, cur)
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.store == nil || s == nil {
		return
	}
	if err := m.store.Save(ctx, s); err != nil {
		logger.WithCtx(ctx).Warn("auth: could not persist session", "error", err)
	}
}

// IsAuthError reports whether err came from a rejected credential or token.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrNoSession)
}
