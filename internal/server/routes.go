package server

import (
	"net/http"

	"petshop/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Categories   *handler.CategoryHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Orders       *handler.OrderHandler
	Profile      *handler.ProfileHandler
	StaffProduct *handler.StaffProductHandler
	StaffOrders  *handler.AdminOrderHandler
	Admin        *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, sessionAuth echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, sessionAuth)
	h.Products.RegisterRoutes(e)
	h.Categories.RegisterRoutes(e, sessionAuth)
	h.Cart.RegisterRoutes(e, sessionAuth)
	h.Checkout.RegisterRoutes(e, sessionAuth)
	h.Orders.RegisterRoutes(e, sessionAuth)
	h.Profile.RegisterRoutes(e, sessionAuth)
	h.StaffProduct.RegisterRoutes(e, sessionAuth)
	h.StaffOrders.RegisterRoutes(e, sessionAuth)
	h.Admin.RegisterRoutes(e, sessionAuth)
}
