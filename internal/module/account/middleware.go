package account

import (
	"github.com/gofiber/fiber/v2"
)

type AccountMiddleware struct {
	service AccountService
	handler *AccountHandler
}

func NewAccountMiddleware(service AccountService, handler *AccountHandler) *AccountMiddleware {
	return &AccountMiddleware{
		service: service,
		handler: handler,
	}
}

// RequireAuth authenticates the request off the cookie pair. A lapsed access
// token falls back to the refresh token; when that succeeds the rotated pair
// is set on the response before the request proceeds, so the client never
// sees the expiry.
func (m *AccountMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(AccessTokenCookie)
		refreshToken := c.Cookies(RefreshTokenCookie)

		result, err := m.service.Authenticate(c.Context(), accessToken, refreshToken)
		if err != nil {
			m.handler.clearAuthCookies(c)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Authentication required",
			})
		}

		if result.RotatedPair != nil {
			m.handler.setAuthCookies(c, result.RotatedPair.AccessToken, result.RotatedPair.RefreshToken)
		}

		c.Locals("account_id", result.Account.ID)
		c.Locals("account", result.Account)

		return c.Next()
	}
}

// RequireRole gates a route on the authenticated account's role. It must run
// after RequireAuth.
func (m *AccountMiddleware) RequireRole(role Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals("account").(*AccountResponse)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Authentication required",
			})
		}

		if current.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Insufficient permissions",
			})
		}

		return c.Next()
	}
}
