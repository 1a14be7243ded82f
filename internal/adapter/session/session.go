package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/YelzhanWeb/kasir/internal/config"
	"github.com/YelzhanWeb/kasir/internal/domain"
)

var ErrNoSession = errors.New("no valid session")

const (
	keyID    = "uid"
	keyEmail = "email"
	keyName  = "name"
	keyRole  = "role"
)

// Principal is the signed-in staff member carried by the session cookie.
type Principal struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

func PrincipalOf(u *domain.User) Principal {
	return Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Manager stores the principal in a signed cookie.
type Manager struct {
	store *sessions.CookieStore
	name  string
}

func NewManager(cfg config.SessionConfig) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{store: store, name: cfg.CookieName}
}

func (m *Manager) Save(w http.ResponseWriter, r *http.Request, p Principal) error {
	// невалидная старая кука заменяется новой сессией
	s, _ := m.store.New(r, m.name)
	s.Values[keyID] = p.ID
	s.Values[keyEmail] = p.Email
	s.Values[keyName] = p.Name
	s.Values[keyRole] = string(p.Role)
	return s.Save(r, w)
}

// Load returns ErrNoSession when the cookie is missing, expired or tampered
// with.
func (m *Manager) Load(r *http.Request) (*Principal, error) {
	s, err := m.store.Get(r, m.name)
	if err != nil || s.IsNew {
		return nil, ErrNoSession
	}

	id, ok := s.Values[keyID].(int64)
	if !ok {
		return nil, ErrNoSession
	}
	role, _ := s.Values[keyRole].(string)
	email, _ := s.Values[keyEmail].(string)
	name, _ := s.Values[keyName].(string)

	return &Principal{ID: id, Email: email, Name: name, Role: domain.Role(role)}, nil
}

// Clear expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s, _ := m.store.New(r, m.name)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}
