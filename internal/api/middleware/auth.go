package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// ActorKey is the echo context key holding the resolved domain.Actor.
const ActorKey = "actor"

// Authenticate resolves the bearer token, if any, into the request's actor.
// Requests without an Authorization header continue as anonymous; access
// decisions are left to the services. A malformed header, a bad token or a
// token whose user no longer exists is rejected with 401.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(ActorKey, domain.Actor{})
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			actor, err := auth.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by Authenticate, or the anonymous actor.
func ActorFrom(c echo.Context) domain.Actor {
	actor, _ := c.Get(ActorKey).(domain.Actor)
	return actor
}
