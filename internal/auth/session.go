package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	apperrors "waconsole/internal/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the console session cookie.
const SessionCookieName = "waconsole_session"

var ErrInvalidCredentials = apperrors.New(apperrors.ErrCodeAuthentication, "invalid username or password")

// Store issues and validates console session tokens. Credentials come from
// configuration; the password is compared against a bcrypt hash.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]time.Time
	ttl          time.Duration
	username     string
	passwordHash []byte
}

func NewStore(username, passwordHash string, ttl time.Duration) *Store {
	return &Store{
		sessions:     make(map[string]time.Time),
		ttl:          ttl,
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

// Login validates credentials and returns a new session token.
func (s *Store) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = time.Now().Add(s.ttl)

	return token, nil
}

// Valid reports whether the token names a live session, pruning it if expired.
func (s *Store) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Logout destroys the session for the given token.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Middleware rejects requests that do not carry a valid session cookie.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || !s.Valid(cookie.Value) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
