package handler

import (
	"errors"
	"io"
	"net/http"

	"petstore-backend/internal/client"
	"petstore-backend/internal/dto"
	"petstore-backend/internal/middleware"
	"petstore-backend/internal/model"
	"petstore-backend/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

type CheckoutHandler struct {
	checkoutService    service.CheckoutService
	fulfillmentService service.FulfillmentService
	verifier           *client.WebhookVerifier
	logger             *zap.Logger
}

func NewCheckoutHandler(
	checkoutService service.CheckoutService,
	fulfillmentService service.FulfillmentService,
	verifier *client.WebhookVerifier,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:    checkoutService,
		fulfillmentService: fulfillmentService,
		verifier:           verifier,
		logger:             logger,
	}
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user := service.UserIdentity{
		ID:    middleware.UserID(c),
		Email: middleware.UserEmail(c),
	}

	result, err := h.checkoutService.CreateSession(ctx, user, req.Items)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// Webhook receives gateway notifications. Verification happens before any
// lookup; an unresolved fulfillment answers 500 so the gateway redelivers.
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "malformed_event", Message: "unreadable body"})
	}

	event, err := h.verifier.VerifyAndParse(body, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		return toHTTPError(err)
	}

	if err := h.fulfillmentService.HandleEvent(ctx, event); err != nil {
		if errors.Is(err, model.ErrMalformedEvent) {
			return toHTTPError(err)
		}
		// Retriable: full rollback already happened, redelivery is safe.
		return echo.NewHTTPError(http.StatusInternalServerError, errorBody{Error: "event_unresolved", Message: "event processing failed"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
