package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "newsdigest_session"
	userKey     = "user"
	stateKey    = "oauth_state"
)

// Sessions wraps the cookie session store so handlers deal with users and
// state strings, not raw session values.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secretKey string) *Sessions {
	store := sessions.NewCookieStore([]byte(secretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// CurrentUser returns the logged-in user, or nil when the request carries no
// valid session.
func (s *Sessions) CurrentUser(r *http.Request) *User {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	user, _ := session.Values[userKey].(*User)
	return user
}

// SaveUser stores the user in the session cookie.
func (s *Sessions) SaveUser(w http.ResponseWriter, r *http.Request, user *User) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[userKey] = user
	return session.Save(r, w)
}

// ClearUser logs the user out.
func (s *Sessions) ClearUser(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, userKey)
	return session.Save(r, w)
}

// NewState generates and stores a random OAuth state token.
func (s *Sessions) NewState(w http.ResponseWriter, r *http.Request) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)

	session, _ := s.store.Get(r, sessionName)
	session.Values[stateKey] = state
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return state, nil
}

// CheckState validates the callback state against the stored one and clears
// it either way.
func (s *Sessions) CheckState(w http.ResponseWriter, r *http.Request, state string) bool {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	stored, _ := session.Values[stateKey].(string)
	delete(session.Values, stateKey)
	_ = session.Save(r, w)

	return stored != "" && stored == state
}
