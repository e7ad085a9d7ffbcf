package handler

import (
	"net/http"
	"strconv"

	"petshop/internal/domain/model"
	"petshop/internal/middleware"
	"petshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// StaffProductHandler is catalog maintenance for staff and admins.
type StaffProductHandler struct {
	uc *usecase.StaffProductUsecase
}

func NewStaffProductHandler(uc *usecase.StaffProductUsecase) *StaffProductHandler {
	return &StaffProductHandler{uc: uc}
}

type ProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	CategoryID    string          `json:"category_id"`
	ImageURL      string          `json:"image_url"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	Material      string          `json:"material"`
	IsActive      *bool           `json:"is_active"`
}

func (r ProductRequest) toInput() usecase.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return usecase.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.CategoryID,
		ImageURL:      r.ImageURL,
		Color:         r.Color,
		Size:          r.Size,
		Material:      r.Material,
		IsActive:      active,
	}
}

type StockUpdateRequest struct {
	StockQuantity *int64 `json:"stock_quantity"`
	Reason        string `json:"reason"`
}

func (h *StaffProductHandler) RegisterRoutes(e *echo.Echo, sessionAuth echo.MiddlewareFunc) {
	g := e.Group("/staff/products", sessionAuth, middleware.RequireRoles(model.RoleStaff, model.RoleAdmin))

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/low-stock", h.lowStock)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PATCH("/:id/stock", h.updateStock)
}

func (h *StaffProductHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", usecase.DefaultProductPageSize)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: c.QueryParam("category_id"),
		Sort:       c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StaffProductHandler) create(c echo.Context) error {
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Create(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *StaffProductHandler) update(c echo.Context) error {
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Update(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *StaffProductHandler) delete(c echo.Context) error {
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

func (h *StaffProductHandler) updateStock(c echo.Context) error {
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.StockQuantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock_quantity is required"})
	}

	if err := h.uc.UpdateStock(c.Request().Context(), actor, c.Param("id"), *req.StockQuantity, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

func (h *StaffProductHandler) lowStock(c echo.Context) error {
	threshold := int64(usecase.DefaultLowStockThreshold)
	if v := c.QueryParam("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid threshold"})
		}
		threshold = n
	}

	items, err := h.uc.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
