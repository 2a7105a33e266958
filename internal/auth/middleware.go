package auth

import (
	"context"
	"strings"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie   = "resto_session"
	FlashCookie     = "resto_flash"
	CtxPrincipalKey = "principal"
)

// Mode selects how a guard reports a rejected request.
type Mode int

const (
	// API routes answer 403 with a JSON body.
	API Mode = iota
	// Page routes redirect to the login page with a flash message.
	Page
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

func tokenFrom(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(SessionCookie)
}

// LoadSession attaches the caller's principal to the request when a valid
// session token is presented. Anonymous requests pass through untouched;
// guards decide what to do with them.
func LoadSession(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return c.Next()
		}
		principal, err := resolver.Resolve(c.UserContext(), token)
		if err == nil {
			c.Locals(CtxPrincipalKey, principal)
		}
		return c.Next()
	}
}

func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// ActorFrom returns the audit identity of the current admin.
func ActorFrom(c *fiber.Ctx) audit.Actor {
	p, ok := PrincipalFrom(c)
	if !ok {
		return audit.Actor{}
	}
	return audit.Actor{UserID: p.UserID, UserName: p.Username}
}

func SetFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    msg,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func deny(c *fiber.Ctx, mode Mode, msg string) error {
	if mode == Page {
		SetFlash(c, msg)
		return c.Redirect("/login", fiber.StatusFound)
	}
	return apperr.Forbidden(msg)
}

// RequireSession rejects anonymous callers.
func RequireSession(mode Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFrom(c); !ok {
			return deny(c, mode, "Please log in to access this page")
		}
		return c.Next()
	}
}

// RequireAdmin rejects anonymous and non-admin callers.
func RequireAdmin(mode Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return deny(c, mode, "Please log in to access this page")
		}
		if !p.IsAdmin {
			return deny(c, mode, "You do not have permission to access this page")
		}
		return c.Next()
	}
}
