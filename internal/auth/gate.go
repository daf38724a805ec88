package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Grant is the outcome of a successful authorization.
type Grant struct {
	Subject        string
	Roles          RoleSet
	Matched        RoleSet
	TokenID        string
	EmailConfirmed bool
	IssuedAt       time.Time
	ExpiresAt      time.Time
	Anonymous      bool
}

// ClaimsGate validates bearer tokens and applies role requirements.
type ClaimsGate struct {
	key      []byte
	issuer   string
	audience string
}

// NewClaimsGate builds a gate that accepts tokens minted with the same configuration.
func NewClaimsGate(cfg TokenConfig) (*ClaimsGate, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("%w: signing key is empty", ErrConfiguration)
	}
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)
	return &ClaimsGate{key: key, issuer: cfg.Issuer, audience: cfg.Audience}, nil
}

// Authorize validates tokenString at the instant now and checks it against req.
// Token failures match ErrInvalidToken; role mismatches match ErrInsufficientRole.
// Both match ErrDenied. The wrapped cause is meant for logs only.
func (g *ClaimsGate) Authorize(tokenString string, req Requirement, now time.Time) (*Grant, error) {
	if req.Anonymous {
		return &Grant{Anonymous: true, Roles: RoleSet{}, Matched: RoleSet{}}, nil
	}

	claims, err := g.parse(tokenString, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	roles := NewRoleSet(claims.Roles...)
	grant := &Grant{
		Subject:        claims.Subject,
		Roles:          roles,
		Matched:        RoleSet{},
		TokenID:        claims.ID,
		EmailConfirmed: claims.EmailConfirmed == "true",
	}
	if claims.IssuedAt != nil {
		grant.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}

	if len(req.Roles) == 0 {
		return grant, nil
	}
	grant.Matched = roles.Intersect(NewRoleSet(req.Roles...))
	if grant.Matched.Len() == 0 {
		return nil, ErrInsufficientRole
	}
	return grant, nil
}

func (g *ClaimsGate) parse(tokenString string, now time.Time) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	parsed, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return g.key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Issuer != g.issuer {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	if !containsAudience(claims.Audience, g.audience) {
		return nil, jwt.ErrTokenInvalidAudience
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

func containsAudience(audiences jwt.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
