package service

import (
	"errors"
	"strings"
)

var (
	ErrAccountExists       = errors.New("user already exists")
	ErrAccountNotFound     = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrEmailNotConfirmed   = errors.New("email is not confirmed")
	ErrInvalidRole         = errors.New("role name is required")
	ErrInvalidConfirmation = errors.New("email confirmation failed")
)

// ValidationError lists every problem found with caller-supplied data.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func newValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}
