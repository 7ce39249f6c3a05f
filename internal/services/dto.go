package services

import (
	"todo/internal/credentials"
	"todo/internal/models"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72,strongpassword"` // bcrypt hashes at most 72 bytes
}

// LoginInput is the payload for authenticating.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is the payload for editing a profile.
type UpdateUserInput struct {
	Name  string `json:"name" validate:"required,min=3,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"required,max=255"`
}

// TaskInput is the payload for creating or editing a task. Any owner field a
// client sends is ignored.
type TaskInput struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// UserDTO is the public view of a user. It never carries the password.
type UserDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  UserDTO
	Token string
}

// TaskDTO is the public view of a task.
type TaskDTO struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

var publicUserColumns = []string{"id", "name", "email", "phone"}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func toTaskDTO(t *models.Task) TaskDTO {
	return TaskDTO{ID: t.ID, Title: t.Title}
}

func identityOf(u *models.User) credentials.Identity {
	return credentials.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}
