package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/token"
)

// Trusted headers injected for backend services after a successful
// authentication. Backends treat them as pre-validated identity.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
	HeaderUserDBID = "X-User-DB-ID"
	HeaderEmail    = "X-User-Email"
	HeaderToken    = "X-Token"
)

// anonymousUser labels denial logs and bodies when no identity was injected.
const anonymousUser = "ANONYMOUS"

// publicPrefixes lists the routes that skip all token checks.
var publicPrefixes = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/auth/refresh",
}

func isPublicPath(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"error":     message,
		"status":    http.StatusUnauthorized,
		"timestamp": timestamp(),
	})
}

// StripTrustedHeaders removes identity headers arriving from untrusted
// clients so the only values backends ever see are the gateway's own.
func StripTrustedHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, header := range []string{HeaderUserID, HeaderUserRole, HeaderUserDBID, HeaderEmail, HeaderToken} {
			c.Request().Header.Del(header)
		}
		return c.Next()
	}
}

// Authentication gates protected routes on a valid bearer token and injects
// the trusted identity headers. The Authorization header itself is forwarded
// unchanged so backends can re-verify independently.
func Authentication(tokens *token.Manager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if isPublicPath(path) {
			return c.Next()
		}

		tokenStr := token.FromAuthorizationHeader(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			logger.Info("request rejected", zap.String("path", path), zap.String("reason", "missing token"))
			return unauthorized(c, "Missing Authorization header")
		}

		if !tokens.Validate(tokenStr) {
			logger.Info("request rejected", zap.String("path", path), zap.String("reason", "invalid token"))
			return unauthorized(c, "Invalid or expired token")
		}

		claims := tokens.ExtractClaims(tokenStr)
		if claims == nil || claims.Subject == "" {
			logger.Info("request rejected", zap.String("path", path), zap.String("reason", "invalid claims"))
			return unauthorized(c, "Invalid token claims")
		}

		role := claims.Role
		if role == "" {
			role = token.RoleUnknown
		}
		dbID := ""
		if claims.UserID != nil {
			dbID = strconv.FormatInt(*claims.UserID, 10)
		}

		c.Request().Header.Set(HeaderUserID, claims.Subject)
		c.Request().Header.Set(HeaderUserRole, role)
		c.Request().Header.Set(HeaderUserDBID, dbID)
		c.Request().Header.Set(HeaderEmail, claims.Email)
		c.Request().Header.Set(HeaderToken, tokenStr)
		return c.Next()
	}
}

// Authorization consults the route policy using the role injected by
// Authentication. Requests without a role header passed the public gate and
// are forwarded without a role check.
func Authorization(policy *RoutePolicy, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if policy == nil {
			logger.Error("route policy not initialized")
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error":     "Route security not initialized",
				"status":    http.StatusInternalServerError,
				"timestamp": timestamp(),
			})
		}

		roleHeader := c.Get(HeaderUserRole)
		if roleHeader == "" {
			return c.Next()
		}

		path := c.Path()
		user := c.Get(HeaderUserID)
		if user == "" {
			user = anonymousUser
		}

		role := domain.ParseRole(roleHeader)
		if !policy.HasAccess(path, role) {
			logger.Info("access denied",
				zap.String("user", user),
				zap.String("role", roleHeader),
				zap.String("path", path))
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"error":     "Access denied",
				"message":   "Role " + roleHeader + " is not allowed to access " + path,
				"user":      user,
				"role":      roleHeader,
				"path":      path,
				"status":    http.StatusForbidden,
				"timestamp": timestamp(),
			})
		}

		logger.Debug("access granted",
			zap.String("user", user),
			zap.String("role", roleHeader),
			zap.String("path", path))
		return c.Next()
	}
}
