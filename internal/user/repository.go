package user

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// Create inserts the user and returns ErrEmailExists when the store
	// rejects the email as a duplicate.
	Create(ctx context.Context, user User) (User, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}

	var maxID int64
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// same guarantee as the UNIQUE constraint on users.email
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, ErrEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, user)
	return user, nil
}
