package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/observability"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// SessionMiddleware resolves the bearer token into a domain.Session. It never
// rejects a request; protected routes decide through Gate.
type SessionMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, logger: logger}
}

// Handle stores the resolved session in the request locals.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	c.Locals(sessionKey, m.resolve(c.Get(fiber.HeaderAuthorization)))
	return c.Next()
}

func (m *SessionMiddleware) resolve(header string) domain.Session {
	if header == "" {
		return domain.AnonymousSession()
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.AnonymousSession()
	}
	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Debug("rejected session token", zap.Error(err))
		return domain.AnonymousSession()
	}
	return domain.AuthenticatedSession(claims.Identity())
}

// SessionFromContext returns the session resolved for this request.
func SessionFromContext(c *fiber.Ctx) domain.Session {
	session, ok := c.Locals(sessionKey).(domain.Session)
	if !ok {
		return domain.AnonymousSession()
	}
	return session
}

// WithSession lets other session providers (and tests) inject a session.
func WithSession(session domain.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// IdentityFromContext returns the signed-in identity for handlers that sit
// behind Protect.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, error) {
	session := SessionFromContext(c)
	if !session.Authenticated || session.User == nil {
		return domain.Identity{}, apperrors.NewUnauthorized("session required")
	}
	return *session.User, nil
}

// Protect renders the gate decision for req in front of the next handler.
func (g *Gate) Protect(req Requirement, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.Evaluate(SessionFromContext(c), req, c.OriginalURL())
		metrics.RecordGateDecision(decision.Outcome.String())

		switch decision.Outcome {
		case OutcomeAllowed:
			return c.Next()
		case OutcomeLoading:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(http.StatusAccepted).JSON(fiber.Map{"state": "loading"})
		case OutcomeRedirect:
			return c.Redirect(decision.RedirectTo, http.StatusFound)
		default:
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": fiber.Map{
				"code":    apperrors.CodeAccessDenied,
				"message": AccessDeniedNotice,
			}})
		}
	}
}

// RequireCapability admits identities whose role holds capability. It sits
// behind Protect, so an unauthenticated request never reaches it.
func (p *CapabilityPolicy) RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := IdentityFromContext(c)
		if err != nil {
			return err
		}
		if !p.Can(identity.Role, capability) {
			return apperrors.NewDomainError(apperrors.CodeAccessDenied, AccessDeniedNotice, http.StatusForbidden,
				map[string]any{"capability": string(capability)})
		}
		return c.Next()
	}
}
