package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// PasswordPolicy lists the complexity rules applied to new passwords.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy mirrors the rules most identity stores ship with.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// PasswordPolicyError carries every rule a password failed.
type PasswordPolicyError struct {
	Problems []string
}

func (e *PasswordPolicyError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Check returns a *PasswordPolicyError listing each violated rule, or nil.
// Passwords longer than MaxPasswordBytes are always rejected.
func (p PasswordPolicy) Check(password string) error {
	var problems []string
	if len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if len(password) > MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("Passwords must be at most %d bytes.", MaxPasswordBytes))
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}
	if p.RequireNonAlphanumeric && !hasOther {
		problems = append(problems, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		problems = append(problems, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	if len(problems) == 0 {
		return nil
	}
	return &PasswordPolicyError{Problems: problems}
}
