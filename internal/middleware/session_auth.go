package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	auth "petshop/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // string
	CtxUserRoleKey  = "user_role"  // model.Role
	CtxSessionIDKey = "session_id" // string
)

const (
	SessionCookieName = "session"
	// RememberMeCookieName holds a token bound to a long lived session.
	RememberMeCookieName = "UserAuth"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (auth.Principal, error)
}

// SessionAuth resolves the session token and puts the caller on the context.
// Lookup order: Authorization bearer, session cookie, remember-me cookie.
func SessionAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			p, err := a.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrUserInactive) {
					return c.JSON(http.StatusForbidden, errorJSON("account disabled"))
				}
				if errors.Is(err, auth.ErrUnauthenticated) {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxUserIDKey, p.UserID)
			c.Set(CtxUserRoleKey, p.Role)
			c.Set(CtxSessionIDKey, p.SessionID)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if authz := c.Request().Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	for _, name := range []string{SessionCookieName, RememberMeCookieName} {
		if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	return ""
}

// UserID reads the id SessionAuth stored.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserIDKey).(string)
	return id, ok && id != ""
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(CtxSessionIDKey).(string)
	return id
}

func UserRole(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(CtxUserRoleKey).(model.Role)
	return r, ok && r != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
