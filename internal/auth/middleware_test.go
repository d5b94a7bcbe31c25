package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/token"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

func newProtectedApp(t *testing.T, handlers ...fiber.Handler) (*fiber.App, *token.Manager) {
	t.Helper()
	tokens := token.NewManager("middleware-test-secret", time.Hour)
	mw := NewMiddleware(tokens)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
		},
	})

	chain := append([]fiber.Handler{mw.Handle}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		claims, _ := IdentityFromContext(c)
		return c.JSON(fiber.Map{"subject": claims.Subject})
	})
	app.Get("/protected", chain...)
	return app, tokens
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	app, _ := newProtectedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	app, _ := newProtectedApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMiddlewareStashesClaims(t *testing.T) {
	app, tokens := newProtectedApp(t)

	signed, _, err := tokens.Issue(token.Identity{
		Username: "jane.doe",
		Role:     "STUDENT",
		UserID:   7,
		Enabled:  true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	app, tokens := newProtectedApp(t, RequireRole(domain.RoleAdmin, domain.RoleProfessor))

	signed, _, err := tokens.Issue(token.Identity{
		Username: "prof.jones",
		Role:     "PROFESSOR",
		UserID:   3,
		Enabled:  true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireRoleDeniesUnlistedRole(t *testing.T) {
	app, tokens := newProtectedApp(t, RequireRole(domain.RoleAdmin))

	signed, _, err := tokens.Issue(token.Identity{
		Username: "jane.doe",
		Role:     "STUDENT",
		UserID:   7,
		Enabled:  true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestRequireRoleDeniesSubjectOnlyToken(t *testing.T) {
	app, tokens := newProtectedApp(t, RequireRole(domain.RoleAdmin, domain.RoleProfessor, domain.RoleStudent))

	signed, _, err := tokens.IssueSubject("jane.doe")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode, "role-less token parses to INVALID and is denied")
}
