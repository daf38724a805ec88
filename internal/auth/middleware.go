package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/observability"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

const grantKey = "auth_grant"

var (
	errMissingHeader   = errors.New("missing authorization header")
	errMalformedHeader = errors.New("malformed authorization header")
)

// GateMiddleware runs the claims gate in front of fiber handlers.
type GateMiddleware struct {
	gate    *ClaimsGate
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewGateMiddleware constructs middleware.
func NewGateMiddleware(gate *ClaimsGate, logger *zap.Logger, metrics *observability.Metrics) *GateMiddleware {
	return &GateMiddleware{gate: gate, logger: logger, metrics: metrics, now: time.Now}
}

// Require admits callers whose token carries at least one of roles.
// With no roles it only demands a valid token.
func (m *GateMiddleware) Require(roles ...string) fiber.Handler {
	return m.handler(RequireRoles(roles...))
}

// Authenticated admits any caller with a valid token.
func (m *GateMiddleware) Authenticated() fiber.Handler {
	return m.handler(Authenticated())
}

// Public marks a route as open to anonymous callers.
func (m *GateMiddleware) Public() fiber.Handler {
	return m.handler(AllowAnonymous())
}

func (m *GateMiddleware) handler(req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		if !req.Anonymous {
			var err error
			token, err = bearerToken(c.Get(fiber.HeaderAuthorization))
			if err != nil {
				return m.deny(c, err)
			}
		}

		grant, err := m.gate.Authorize(token, req, m.now())
		if err != nil {
			return m.deny(c, err)
		}

		m.metrics.RecordAuthDecision("gate", "granted")
		c.Locals(grantKey, grant)
		return c.Next()
	}
}

// deny answers every failure the same way; only the log line tells causes apart.
func (m *GateMiddleware) deny(c *fiber.Ctx, cause error) error {
	m.metrics.RecordAuthDecision("gate", "denied")
	m.logger.Debug("authorization denied",
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.Error(cause),
	)
	return apperrors.NewUnauthorized(cause)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedHeader
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}

// GrantFromContext retrieves the grant stored by the gate middleware.
func GrantFromContext(c *fiber.Ctx) (*Grant, bool) {
	val := c.Locals(grantKey)
	if val == nil {
		return nil, false
	}
	grant, ok := val.(*Grant)
	return grant, ok
}
