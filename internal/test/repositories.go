package test

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[uuid.UUID]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[uuid.UUID]*model.User),
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[uuid.UUID]*model.User)
	}
	key := strings.ToLower(login)
	if _, exists := s.Users[key]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := &model.User{ID: uuid.New(), Login: login, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	s.Users[key] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[strings.ToLower(login)]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// TransactorStub fails or delegates unit-of-work execution.
type TransactorStub struct {
	AtomicFn func(context.Context, func(context.Context, repository.Tx) error) error
	Err      error
}

// Atomic returns the configured error without running fn unless an override is set.
func (s TransactorStub) Atomic(ctx context.Context, fn func(context.Context, repository.Tx) error) error {
	if s.AtomicFn != nil {
		return s.AtomicFn(ctx, fn)
	}
	return s.Err
}

var _ repository.UserRepository = (*UserRepositoryStub)(nil)
var _ repository.Transactor = TransactorStub{}
