package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(ChangePasswordRequest{Username: "alice"})

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Equal(t, "current_password is required", domainErr.Details["current_password"])
	assert.Equal(t, "new_password is required", domainErr.Details["new_password"])
	assert.NotContains(t, domainErr.Details, "username")
}

func TestValidateEmail(t *testing.T) {
	err := Validate(RegisterRequest{Username: "alice", Email: "not-an-email", Password: "x"})

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "email must be a valid email", domainErr.Details["email"])
}

func TestValidateAcceptsValidPayload(t *testing.T) {
	assert.NoError(t, Validate(LoginRequest{Username: "alice", Password: "secret"}))
	assert.NoError(t, Validate(AssignRoleRequest{Username: "alice", Role: "Admin"}))
}

func TestValidateCapsPasswordLength(t *testing.T) {
	long := strings.Repeat("x", 73)

	err := Validate(RegisterRequest{Username: "alice", Email: "alice@example.com", Password: long})
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "password must be at most 72 characters", domainErr.Details["password"])

	err = Validate(ChangePasswordRequest{Username: "alice", CurrentPassword: "x", NewPassword: long})
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "new_password must be at most 72 characters", domainErr.Details["new_password"])
}
