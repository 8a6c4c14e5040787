package handler

import (
	"errors"
	"net/http"

	"petstore-backend/internal/model"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// toHTTPError maps domain errors to stable error kinds. Internal detail is
// logged by the services, never echoed back to the caller.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidCart):
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "invalid_cart", Message: "cart is empty or contains invalid items"})
	case errors.Is(err, model.ErrSignatureInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "signature_invalid", Message: "webhook signature verification failed"})
	case errors.Is(err, model.ErrMalformedEvent):
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "malformed_event", Message: "event payload could not be parsed"})
	case errors.Is(err, model.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errorBody{Error: "order_not_found", Message: "order not found"})
	case errors.Is(err, model.ErrPetNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errorBody{Error: "pet_not_found", Message: "pet not found"})
	case errors.Is(err, model.ErrInventoryConflict):
		return echo.NewHTTPError(http.StatusConflict, errorBody{Error: "inventory_conflict", Message: "an item is no longer available"})
	case errors.Is(err, model.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, errorBody{Error: "invalid_transition", Message: "order status cannot move that way"})
	case errors.Is(err, model.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, errorBody{Error: "gateway_unavailable", Message: "payment gateway request failed"})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "something went wrong"})
	}
}
