package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
)

var testTokenConfig = TokenConfig{
	SigningKey: []byte("test-secret-32-bytes-minimum"),
	Issuer:     "app",
	Audience:   "app-clients",
	TTL:        60 * time.Minute,
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testTokenConfig)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuerRejectsBadConfig(t *testing.T) {
	cfg := testTokenConfig
	cfg.SigningKey = nil
	_, err := NewTokenIssuer(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg = testTokenConfig
	cfg.TTL = 0
	_, err = NewTokenIssuer(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg.TTL = -time.Minute
	_, err = NewTokenIssuer(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestIssueTokenRequiresUsername(t *testing.T) {
	issuer := newTestIssuer(t)

	_, err := issuer.IssueToken(domain.Identity{Username: "  "}, []string{domain.RoleUser}, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIssueTokenClaims(t *testing.T) {
	issuer := newTestIssuer(t)
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 500, time.UTC)

	issued, err := issuer.IssueTokenAt(domain.Identity{Username: "alice"}, []string{"User", "Admin", "User", ""}, false, issuedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, issued.TokenID)
	assert.Equal(t, issuedAt.Truncate(time.Second), issued.IssuedAt)
	assert.Equal(t, issued.IssuedAt.Add(60*time.Minute), issued.ExpiresAt)

	parsed, _, err := jwt.NewParser().ParseUnverified(issued.Token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Header["alg"])

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, issued.TokenID, claims["jti"])
	assert.Equal(t, "app", claims["iss"])
	assert.Equal(t, []interface{}{"app-clients"}, claims["aud"])
	assert.Equal(t, []interface{}{"User", "Admin"}, claims["role"])
	assert.Equal(t, "false", claims["email_confirmed"])
	assert.Equal(t, float64(issued.ExpiresAt.Unix()), claims["exp"])
	assert.Equal(t, float64(issued.IssuedAt.Unix()), claims["iat"])
}

func TestIssueTokenWithoutRolesOmitsRoleClaim(t *testing.T) {
	issuer := newTestIssuer(t)

	issued, err := issuer.IssueToken(domain.Identity{Username: "bob"}, nil, true)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(issued.Token, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	_, present := claims["role"]
	assert.False(t, present)
	assert.Equal(t, "true", claims["email_confirmed"])
}

func TestIssueTokenUniqueIDs(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Now()

	first, err := issuer.IssueTokenAt(domain.Identity{Username: "alice"}, nil, true, now)
	require.NoError(t, err)
	second, err := issuer.IssueTokenAt(domain.Identity{Username: "alice"}, nil, true, now)
	require.NoError(t, err)

	assert.NotEqual(t, first.TokenID, second.TokenID)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestIssuerCopiesSigningKey(t *testing.T) {
	key := []byte("test-secret-32-bytes-minimum")
	cfg := testTokenConfig
	cfg.SigningKey = key
	issuer, err := NewTokenIssuer(cfg)
	require.NoError(t, err)

	key[0] = 'X'

	gate, err := NewClaimsGate(testTokenConfig)
	require.NoError(t, err)
	now := time.Now()
	issued, err := issuer.IssueTokenAt(domain.Identity{Username: "alice"}, nil, true, now)
	require.NoError(t, err)
	_, err = gate.Authorize(issued.Token, Authenticated(), now)
	assert.NoError(t, err)
}

func TestTTL(t *testing.T) {
	assert.Equal(t, 60*time.Minute, newTestIssuer(t).TTL())
}
