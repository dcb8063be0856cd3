package auth

import (
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

// Identity is the current session as seen by one consumer. It changes only
// through Apply, which is what a dispatcher subscription calls.
type Identity struct {
	mu      sync.RWMutex
	session *Session
	user    *User
}

// NewIdentity returns an anonymous identity.
func NewIdentity() *Identity { return &Identity{} }

// Apply folds a change into the identity.
func (i *Identity) Apply(c Change) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch c.Event {
	case SignedOut:
		i.session, i.user = nil, nil
	case UserUpdated:
		if c.Session != nil && c.Session.User != nil {
			i.user = c.Session.User
			if i.session != nil {
				cp := *i.session
				cp.User = c.Session.User
				i.session = &cp
			}
		}
	default:
		i.session = c.Session
		i.user = nil
		if c.Session != nil {
			i.user = c.Session.User
		}
	}
}

// Subscribe keeps the identity in sync with changes fired on d.
func (i *Identity) Subscribe(d *event.Dispatcher) (unsubscribe func()) {
	return d.Listen(EventName, func(p interface{}) {
		if c, ok := p.(Change); ok {
			i.Apply(c)
		}
	})
}

// User is the signed-in user or nil.
func (i *Identity) User() *User {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.user
}

// UserID is "" when anonymous.
func (i *Identity) UserID() string {
	if u := i.User(); u != nil {
		return u.ID
	}
	return ""
}

func (i *Identity) IsAuthenticated() bool { return i.User() != nil }

// AccessToken is "" when anonymous.
func (i *Identity) AccessToken() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.session == nil {
		return ""
	}
	return i.session.AccessToken
}

// Session returns a copy of the current session or nil.
func (i *Identity) Session() *Session {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.session == nil {
		return nil
	}
	cp := *i.session
	return &cp
}
