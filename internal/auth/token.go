package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TokenConfig is the process-wide signing configuration shared by the issuer and the gate.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// Validate reports ErrConfiguration when the key is empty or the lifetime is not positive.
func (c TokenConfig) Validate() error {
	if len(c.SigningKey) == 0 {
		return fmt.Errorf("%w: signing key is empty", ErrConfiguration)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %s", ErrConfiguration, c.TTL)
	}
	return nil
}

// Claims describes the JWT payload.
type Claims struct {
	Roles          []string `json:"role,omitempty"`
	EmailConfirmed string   `json:"email_confirmed"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus the metadata callers usually need.
type IssuedToken struct {
	Token     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints signed access tokens.
type TokenIssuer struct {
	cfg TokenConfig
}

// NewTokenIssuer builds an issuer, failing with ErrConfiguration on an unusable config.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)
	cfg.SigningKey = key
	return &TokenIssuer{cfg: cfg}, nil
}

// IssueToken signs a token for the identity that is valid from now for the configured TTL.
func (ti *TokenIssuer) IssueToken(identity domain.Identity, roles []string, emailConfirmed bool) (*IssuedToken, error) {
	return ti.IssueTokenAt(identity, roles, emailConfirmed, time.Now())
}

// IssueTokenAt is IssueToken with an explicit issuance time.
func (ti *TokenIssuer) IssueTokenAt(identity domain.Identity, roles []string, emailConfirmed bool, issuedAt time.Time) (*IssuedToken, error) {
	if err := ti.cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(identity.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	// JWT numeric dates carry whole seconds.
	issuedAt = issuedAt.Truncate(time.Second)
	expiresAt := issuedAt.Add(ti.cfg.TTL)
	tokenID := uuid.NewString()

	claims := &Claims{
		Roles:          uniqueRoles(roles),
		EmailConfirmed: strconv.FormatBool(emailConfirmed),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			ID:        tokenID,
			Issuer:    ti.cfg.Issuer,
			Audience:  jwt.ClaimStrings{ti.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &IssuedToken{
		Token:     tokenString,
		TokenID:   tokenID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// TTL returns the configured token lifetime.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.cfg.TTL
}

func uniqueRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
