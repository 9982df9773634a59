// Package auth implements the credential boundary in front of the analysis
// API: a bcrypt-hashed user store, HS256 bearer tokens, and the middleware
// that enforces them. No analysis code runs for an unauthenticated request.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Roles supported by the API.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// User is an API account. The password hash never serializes.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash []byte    `json:"-"`
}

// UserStore is a thread-safe in-memory account store.
type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]*User
	byName map[string]string // username → id
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[string]*User),
		byName: make(map[string]string),
	}
}

// Create registers a user with a bcrypt-hashed password.
func (s *UserStore) Create(username, password, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if role != RoleAdmin {
		role = RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[username]; exists {
		return nil, ErrUserExists
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: hash,
	}
	s.byID[u.ID] = u
	s.byName[username] = u.ID
	return u, nil
}

// Authenticate checks a username/password pair against the store.
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	s.mu.RLock()
	id, ok := s.byName[username]
	var u *User
	if ok {
		u = s.byID[id]
	}
	s.mu.RUnlock()

	if u == nil || !u.Active {
		// Burn a comparison anyway so misses and mismatches take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get retrieves a user by id.
func (s *UserStore) Get(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	return u, ok
}

// List returns every account.
func (s *UserStore) List() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out
}

// Delete removes an account by id.
func (s *UserStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.byID, id)
	delete(s.byName, u.Username)
	return nil
}

// dummyHash is compared on unknown-user logins to keep timing flat.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.MinCost)
	return h
}()
