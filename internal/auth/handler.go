package auth

import (
	"errors"
	"strings"
	"time"

	"resto-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type CookieOptions struct {
	Secure bool
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) ||
		c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// GET /login
// Page model for the login form: the pending flash message, if any.
func LoginPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFrom(c); ok {
			return c.Redirect("/admin", fiber.StatusFound)
		}
		flash := c.Cookies(FlashCookie)
		if flash != "" {
			c.ClearCookie(FlashCookie)
		}
		return c.JSON(fiber.Map{"flash": flash})
	}
}

// POST /login
func LoginHandler(svc *Service, opts CookieOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		token, sess, err := svc.Authenticate(c.UserContext(), body.Username, body.Password)
		if errors.Is(err, apperr.ErrUnauthorized) {
			if wantsJSON(c) {
				return err
			}
			SetFlash(c, "Invalid username or password")
			return c.Redirect("/login", fiber.StatusFound)
		}
		if err != nil {
			return err
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   opts.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		if wantsJSON(c) {
			return c.JSON(fiber.Map{"success": true, "expires_at": sess.ExpiresAt.Format(time.RFC3339)})
		}
		return c.Redirect("/admin", fiber.StatusFound)
	}
}

// GET /logout
func LogoutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, ok := PrincipalFrom(c); ok {
			if err := svc.Logout(c.UserContext(), p.SessionID); err != nil {
				return err
			}
		}
		c.ClearCookie(SessionCookie)
		return c.Redirect("/", fiber.StatusFound)
	}
}

// GET /api/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperr.Forbidden("not logged in")
		}
		return c.JSON(p)
	}
}
