package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
)

func newTestGate(t *testing.T) *ClaimsGate {
	t.Helper()
	gate, err := NewClaimsGate(testTokenConfig)
	require.NoError(t, err)
	return gate
}

func issueAt(t *testing.T, cfg TokenConfig, username string, roles []string, at time.Time) string {
	t.Helper()
	issuer, err := NewTokenIssuer(cfg)
	require.NoError(t, err)
	issued, err := issuer.IssueTokenAt(domain.Identity{Username: username}, roles, true, at)
	require.NoError(t, err)
	return issued.Token
}

func TestNewClaimsGateRequiresKey(t *testing.T) {
	_, err := NewClaimsGate(TokenConfig{Issuer: "app", Audience: "app-clients"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAuthorizeLifetime(t *testing.T) {
	gate := newTestGate(t)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := issueAt(t, testTokenConfig, "alice", []string{"User"}, t0)

	grant, err := gate.Authorize(token, RequireRoles("User"), t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", grant.Subject)
	assert.True(t, grant.Roles.Has("User"))
	assert.True(t, grant.Matched.Has("User"))
	assert.True(t, grant.EmailConfirmed)
	assert.True(t, t0.Equal(grant.IssuedAt))
	assert.True(t, t0.Add(60*time.Minute).Equal(grant.ExpiresAt))
	assert.False(t, grant.Anonymous)

	_, err = gate.Authorize(token, RequireRoles("User"), t0.Add(61*time.Minute))
	assert.ErrorIs(t, err, ErrDenied)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthorizeExpiresAtBoundary(t *testing.T) {
	gate := newTestGate(t)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := issueAt(t, testTokenConfig, "alice", nil, t0)

	_, err := gate.Authorize(token, Authenticated(), t0.Add(60*time.Minute-time.Second))
	assert.NoError(t, err)

	_, err = gate.Authorize(token, Authenticated(), t0.Add(60*time.Minute))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthorizeRejectsForeignTokens(t *testing.T) {
	gate := newTestGate(t)
	now := time.Now()

	wrongKey := testTokenConfig
	wrongKey.SigningKey = []byte("another-secret-entirely")
	wrongIssuer := testTokenConfig
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := testTokenConfig
	wrongAudience.Audience = "other-clients"

	tests := []struct {
		name  string
		token string
		cause error
	}{
		{name: "wrong key", token: issueAt(t, wrongKey, "alice", []string{"User"}, now), cause: jwt.ErrTokenSignatureInvalid},
		{name: "wrong issuer", token: issueAt(t, wrongIssuer, "alice", []string{"User"}, now), cause: jwt.ErrTokenInvalidIssuer},
		{name: "wrong audience", token: issueAt(t, wrongAudience, "alice", []string{"User"}, now), cause: jwt.ErrTokenInvalidAudience},
		{name: "garbage", token: "not-a-jwt", cause: jwt.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Authorize(tt.token, RequireRoles("User"), now)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestAuthorizeRejectsEmptyToken(t *testing.T) {
	_, err := newTestGate(t).Authorize("", Authenticated(), time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeRejectsUnsignedToken(t *testing.T) {
	now := time.Now()
	claims := &Claims{
		Roles:          []string{"Admin"},
		EmailConfirmed: "true",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    "app",
			Audience:  jwt.ClaimStrings{"app-clients"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestGate(t).Authorize(token, RequireRoles("Admin"), now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeRejectsOtherHMAC(t *testing.T) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "app",
			Audience:  jwt.ClaimStrings{"app-clients"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testTokenConfig.SigningKey)
	require.NoError(t, err)

	_, err = newTestGate(t).Authorize(token, Authenticated(), now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeRequiresExpiry(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "alice",
			Issuer:   "app",
			Audience: jwt.ClaimStrings{"app-clients"},
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testTokenConfig.SigningKey)
	require.NoError(t, err)

	_, err = newTestGate(t).Authorize(token, Authenticated(), time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeRoleSemantics(t *testing.T) {
	gate := newTestGate(t)
	now := time.Now()
	userToken := issueAt(t, testTokenConfig, "alice", []string{"User"}, now)
	adminToken := issueAt(t, testTokenConfig, "root", []string{"Admin", "User"}, now)
	noRoles := issueAt(t, testTokenConfig, "carol", nil, now)

	grant, err := gate.Authorize(userToken, RequireRoles("Admin", "User"), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, grant.Matched.Sorted())

	grant, err = gate.Authorize(adminToken, RequireRoles("Admin", "User"), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "User"}, grant.Matched.Sorted())

	_, err = gate.Authorize(userToken, RequireRoles("Admin"), now)
	assert.ErrorIs(t, err, ErrInsufficientRole)
	assert.ErrorIs(t, err, ErrDenied)
	assert.NotErrorIs(t, err, ErrInvalidToken)

	_, err = gate.Authorize(noRoles, RequireRoles("User"), now)
	assert.ErrorIs(t, err, ErrInsufficientRole)

	grant, err = gate.Authorize(noRoles, Authenticated(), now)
	require.NoError(t, err)
	assert.Equal(t, "carol", grant.Subject)
	assert.Zero(t, grant.Roles.Len())
}

func TestAuthorizeRoleNamesAreCaseSensitive(t *testing.T) {
	gate := newTestGate(t)
	now := time.Now()
	token := issueAt(t, testTokenConfig, "alice", []string{"user"}, now)

	_, err := gate.Authorize(token, RequireRoles("User"), now)
	assert.ErrorIs(t, err, ErrInsufficientRole)
}

func TestAuthorizeAnonymous(t *testing.T) {
	gate := newTestGate(t)

	grant, err := gate.Authorize("", AllowAnonymous(), time.Now())
	require.NoError(t, err)
	assert.True(t, grant.Anonymous)
	assert.Empty(t, grant.Subject)

	grant, err = gate.Authorize("garbage", AllowAnonymous(), time.Now())
	require.NoError(t, err)
	assert.True(t, grant.Anonymous)
}
