package services

import "errors"

// Domain failures returned by the services. Handlers map them to status codes.
var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrEmailMismatch      = errors.New("you are not authorized to perform this action")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTitle       = errors.New("title must be at least 3 characters long")
)
