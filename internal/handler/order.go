package handler

import (
	"net/http"

	"petstore-backend/internal/dto"
	"petstore-backend/internal/middleware"
	"petstore-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.CreateOrder(ctx, middleware.UserID(c), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.orderService.UpdateStatus(ctx, middleware.UserID(c), c.Param("id"), &req); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}
