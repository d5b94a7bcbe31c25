package gateway

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/config"
)

// routeTarget maps a path prefix onto a backend base URL.
type routeTarget struct {
	prefix string
	target string
}

// Proxy forwards authenticated requests to the backend services by path
// prefix. Headers set by the middleware chain travel with the request.
func Proxy(cfg config.GatewayConfig, logger *zap.Logger) fiber.Handler {
	targets := []routeTarget{
		{"/api/auth", cfg.AuthServiceURL},
		{"/api/students", cfg.AuthServiceURL},
		{"/api/ws/course", cfg.CourseServiceURL},
		{"/api/ws/billing", cfg.BillingServiceURL},
		{"/api/billing", cfg.BillingServiceURL},
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, route := range targets {
			if strings.HasPrefix(path, route.prefix) {
				if err := proxy.Do(c, route.target+c.OriginalURL()); err != nil {
					logger.Error("backend unreachable",
						zap.String("path", path),
						zap.String("target", route.target),
						zap.Error(err))
					return c.Status(http.StatusBadGateway).JSON(fiber.Map{
						"error":     "Backend service unavailable",
						"status":    http.StatusBadGateway,
						"timestamp": timestamp(),
					})
				}
				// fiber's proxy sets the Server header of the backend
				c.Response().Header.Del(fiber.HeaderServer)
				return nil
			}
		}

		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error":     "No route for path",
			"status":    http.StatusNotFound,
			"timestamp": timestamp(),
		})
	}
}
