package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/apperror"
)

const (
	// AccountIDLocalKey holds the authenticated account id.
	AccountIDLocalKey = "account_id"
	// AccessTokenLocalKey holds the raw bearer token of the request.
	AccessTokenLocalKey = "access_token"
)

// Authenticator resolves an access token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, access string) (int64, error)
}

// RequireAuth rejects requests without a valid bearer access token. On
// success the account id and raw token are stored in locals.
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fmt.Errorf("%w: missing bearer token", apperror.ErrUnauthenticated)
		}

		id, err := auth.Authenticate(c.UserContext(), raw)
		if err != nil {
			return err
		}

		c.Locals(AccountIDLocalKey, id)
		c.Locals(AccessTokenLocalKey, raw)
		return c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AccountID returns the account stored by RequireAuth.
func AccountID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(AccountIDLocalKey).(int64)
	return id, ok
}

// AccessToken returns the bearer token stored by RequireAuth.
func AccessToken(c *fiber.Ctx) string {
	raw, _ := c.Locals(AccessTokenLocalKey).(string)
	return raw
}
