package handler

import (
	"errors"
	"net/http"
	"time"

	"petshop/internal/middleware"
	"petshop/internal/usecase"
	auth "petshop/internal/usecase/auth_usecase"
	"petshop/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase
	loginUC      *auth.LoginUsecase
	logoutUC     *auth.LogoutUsecase
	meUC         *auth.MeUsecase
	cookieSecure bool
}

func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	logoutUC *auth.LogoutUsecase,
	meUC *auth.MeUsecase,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		logoutUC:     logoutUC,
		meUC:         meUC,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
}

type loginRequest struct {
	Login      string `json:"login"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type loginResponse struct {
	User      usecase.UserOutput `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, sessionAuth echo.MiddlewareFunc) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/logout", h.logout, sessionAuth)
	e.GET("/auth/me", h.me, sessionAuth)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
		Phone:           req.Phone,
	})
	if err != nil {
		var fields validator.Errors
		switch {
		case errors.As(err, &fields):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error", Fields: fields})
		case errors.Is(err, auth.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "username already exists"})
		case errors.Is(err, auth.ErrEmailTaken):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already exists"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusCreated, usecase.ToUserOutput(out.User))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Login:      req.Login,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		UserAgent:  c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
		case errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "account disabled"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	// only one token cookie survives a login; SessionAuth prefers the session cookie
	if out.RememberMe {
		c.SetCookie(h.cookie(middleware.RememberMeCookieName, out.Token, out.ExpiresAt))
		c.SetCookie(h.expired(middleware.SessionCookieName))
	} else {
		// browser session cookie, no Expires
		c.SetCookie(h.cookie(middleware.SessionCookieName, out.Token, time.Time{}))
		c.SetCookie(h.expired(middleware.RememberMeCookieName))
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:      usecase.ToUserOutput(out.User),
		Token:     out.Token,
		ExpiresAt: out.ExpiresAt,
	})
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.logoutUC.Execute(c.Request().Context(), middleware.SessionID(c)); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return unauthorized(c)
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	c.SetCookie(h.expired(middleware.SessionCookieName))
	c.SetCookie(h.expired(middleware.RememberMeCookieName))
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.meUC.Execute(c.Request().Context(), auth.Principal{UserID: userID})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return unauthorized(c)
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, usecase.ToUserOutput(user))
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) expired(name string) *http.Cookie {
	ck := h.cookie(name, "", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}
