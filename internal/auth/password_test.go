package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	assert.NoError(t, ComparePassword(hash, "Passw0rd!"))
	assert.ErrorIs(t, ComparePassword(hash, "passw0rd!"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestPasswordPolicyAcceptsStrongPassword(t *testing.T) {
	assert.NoError(t, DefaultPasswordPolicy().Check("Passw0rd!"))
}

func TestPasswordPolicyListsEveryProblem(t *testing.T) {
	err := DefaultPasswordPolicy().Check("abc")

	var policyErr *PasswordPolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, []string{
		"Passwords must be at least 6 characters.",
		"Passwords must have at least one non alphanumeric character.",
		"Passwords must have at least one digit ('0'-'9').",
		"Passwords must have at least one uppercase ('A'-'Z').",
	}, policyErr.Problems)
	assert.Equal(t, "Passwords must be at least 6 characters., Passwords must have at least one non alphanumeric character., "+
		"Passwords must have at least one digit ('0'-'9')., Passwords must have at least one uppercase ('A'-'Z').", err.Error())
}

func TestPasswordPolicyRulesCanBeRelaxed(t *testing.T) {
	policy := PasswordPolicy{MinLength: 4}
	assert.NoError(t, policy.Check("abcd"))
	assert.Error(t, policy.Check("abc"))

	policy = PasswordPolicy{RequireLowercase: true}
	err := policy.Check("ABC1!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lowercase")
}

func TestPasswordPolicyRejectsOverlongPasswords(t *testing.T) {
	long := "Aa1!" + strings.Repeat("x", 69)
	require.Len(t, long, 73)

	err := DefaultPasswordPolicy().Check(long)
	var policyErr *PasswordPolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, []string{"Passwords must be at most 72 bytes."}, policyErr.Problems)

	assert.NoError(t, PasswordPolicy{}.Check(long[:MaxPasswordBytes]))
}
