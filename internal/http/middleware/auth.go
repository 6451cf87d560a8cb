package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"fileshare/internal/model"
	"fileshare/internal/service"
)

const (
	// UserLocalKey holds the authenticated *model.User.
	UserLocalKey = "user"
	// ClaimsLocalKey holds the *service.Claims of the presented token.
	ClaimsLocalKey = "claims"
)

// RequireAuth resolves the bearer token of the request. Requests without a
// valid token fail with service.ErrUnauthenticated, which the app's error
// handler turns into a 401.
func RequireAuth(identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return service.ErrUnauthenticated
		}
		user, claims, err := identity.ResolveToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(UserLocalKey, user)
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser returns the user set by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// CurrentClaims returns the token claims set by RequireAuth, or nil.
func CurrentClaims(c *fiber.Ctx) *service.Claims {
	cl, _ := c.Locals(ClaimsLocalKey).(*service.Claims)
	return cl
}
