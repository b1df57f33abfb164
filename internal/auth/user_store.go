package auth

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrUserNotFound = errors.New("auth: user not found")

// UserRepository looks up a user and their password hash by username or
// email. The login handler checks the returned hash with PasswordService;
// the repository itself never compares passwords.
type UserRepository interface {
	GetByUsername(username string) (*User, string, error)
	GetByEmail(email string) (*User, string, error)
}

// MemoryUserRepository is an in-memory UserRepository seeded with a single
// admin account. It exists so the admin API has someone to log in as
// without standing up an external identity provider.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*userWithPassword
	byEmail map[string]string
	byName  map[string]string
}

type userWithPassword struct {
	user         *User
	passwordHash string
}

// NewMemoryUserRepository seeds the repository with one admin account,
// username/password as given. The password is hashed immediately; the
// plaintext is discarded.
func NewMemoryUserRepository(adminUsername, adminPassword string) (*MemoryUserRepository, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &User{
		ID:        "user-admin",
		Username:  adminUsername,
		Email:     adminUsername + "@local",
		Role:      RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	repo := &MemoryUserRepository{
		users:   map[string]*userWithPassword{admin.ID: {user: admin, passwordHash: string(hash)}},
		byEmail: map[string]string{admin.Email: admin.ID},
		byName:  map[string]string{admin.Username: admin.ID},
	}
	return repo, nil
}

func (r *MemoryUserRepository) GetByUsername(username string) (*User, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, "", ErrUserNotFound
	}
	uwp := r.users[id]
	return uwp.user, uwp.passwordHash, nil
}

func (r *MemoryUserRepository) GetByEmail(email string) (*User, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, "", ErrUserNotFound
	}
	uwp := r.users[id]
	return uwp.user, uwp.passwordHash, nil
}
