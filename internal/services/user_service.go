package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo/internal/credentials"
	"todo/internal/models"
	"todo/internal/repositories"
)

// LogoutMessage is returned by Logout. Tokens are not revoked server side.
const LogoutMessage = "Logged out successfully"

// UserService handles registration, authentication and profile management.
type UserService struct {
	users  repositories.Repository[models.User]
	tokens *credentials.TokenManager
	events EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(users repositories.Repository[models.User], tokens *credentials.TokenManager, events EventPublisher) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		events: events,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	existing, err := s.users.FindOne(ctx, repositories.Query{
		Select: publicUserColumns,
		Where:  map[string]any{"email": in.Email},
	})
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The password is hashed by models.User.BeforeCreate.
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
	}
	if err := s.users.Save(ctx, user); err != nil {
		// The unique index is the real guard; the lookup above only avoids a failed insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	dto := toUserDTO(user)
	publish(ctx, s.events, EventUserRegistered, dto)
	return &AuthResult{User: dto, Token: token}, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// Unknown email and wrong password fail identically.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindOne(ctx, repositories.Query{
		Select: []string{"id", "name", "email", "phone", "password"},
		Where:  map[string]any{"email": in.Email},
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !credentials.CheckPassword(in.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: toUserDTO(user), Token: token}, nil
}

// Logout is stateless: the client discards its bearer token.
func (s *UserService) Logout() string {
	return LogoutMessage
}

// UpdateProfile edits the caller's name and phone. The submitted email must
// match the stored one; this path never changes an account's email.
func (s *UserService) UpdateProfile(ctx context.Context, caller credentials.Identity, in UpdateUserInput) (*UserDTO, error) {
	existing, err := s.findByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if existing.Email != in.Email {
		return nil, ErrEmailMismatch
	}

	updated, err := s.users.Update(ctx, caller.ID, map[string]any{
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	dto := toUserDTO(updated)
	return &dto, nil
}

// Profile returns the caller's public profile.
func (s *UserService) Profile(ctx context.Context, caller credentials.Identity) (*UserDTO, error) {
	user, err := s.findByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

func (s *UserService) findByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindOne(ctx, repositories.Query{
		Select: publicUserColumns,
		Where:  map[string]any{"id": id},
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
