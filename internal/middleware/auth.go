package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth resolves the "Authorization: Bearer <token>" header to an active account and stores
// it in the echo context under CurrentUserKey.
//
// A missing header or unknown token answers 401 with a Bearer challenge; a disabled account
// answers 400.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errs.NewUnauthorizedError("Not authenticated")
		}

		user, err := auth.auth.CurrentActiveUser(c.Request().Context(), token)
		if err != nil {
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Err(err).
				Msg("authentication rejected")
			return err
		}

		c.Set(UserIDKey, user.String("username"))
		c.Set(CurrentUserKey, user)

		GetLogger(c).Debug().
			Str("function", "RequireAuth").
			Str("user_id", user.String("username")).
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
