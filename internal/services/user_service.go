package services

import (
	"context"
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	repo   repository.Repository
	mapper *domain.UserMapper
	now    Clock
}

// NewUserService creates a new UserService instance
func NewUserService(repo repository.Repository, now Clock) UserService {
	if now == nil {
		now = time.Now
	}
	return &userServiceImpl{repo: repo, mapper: domain.NewUserMapper(), now: now}
}

// CreateUser creates a user with a unique, non-blank username
func (u *userServiceImpl) CreateUser(ctx context.Context, username string, admin bool) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		ve := validation.NewValidationError()
		ve.AddRequiredError("username")
		return domain.User{}, errors.NewValidationError("invalid user", ve)
	}

	row := &repository.UserRow{Username: username, IsAdmin: admin, CreatedAt: u.now()}
	if err := u.repo.CreateUser(ctx, row); err != nil {
		return domain.User{}, err
	}
	return u.mapper.FromRow(row), nil
}

// GetUser retrieves a user by ID
func (u *userServiceImpl) GetUser(ctx context.Context, id int64) (domain.User, error) {
	row, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return u.mapper.FromRow(row), nil
}

// GetUserByUsername retrieves a user by username
func (u *userServiceImpl) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := u.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, err
	}
	return u.mapper.FromRow(row), nil
}

// ListUsers returns all users
func (u *userServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := u.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return u.mapper.FromRows(rows), nil
}

// Lookup resolves a user id for the identity layer.
func (u *userServiceImpl) Lookup(ctx context.Context, id int64) (domain.User, error) {
	return u.GetUser(ctx, id)
}
