package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository is an in-memory user store keyed by id with a unique email index.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   map[uuid.UUID]*domain.User{},
		byEmail: map[string]uuid.UUID{},
	}
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := cloneUser(user)
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byEmail[clone.Email]; ok && id != clone.ID {
		return nil, ports.ErrDuplicateEmail
	}
	if previous, ok := r.users[clone.ID]; ok {
		delete(r.byEmail, previous.Email)
	}
	r.users[clone.ID] = clone
	r.byEmail[clone.Email] = clone.ID
	return cloneUser(clone), nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		list = append(list, cloneUser(user))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &clone
}
