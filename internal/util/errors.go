package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrNotOwner           = errors.New("resource not owned by user")
)
