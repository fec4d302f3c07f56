package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-zarinpal/app/factory"
	"github.com/vibast-solutions/ms-go-zarinpal/app/mapper"
	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
	"github.com/vibast-solutions/ms-go-zarinpal/app/service"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) CreatePayment(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	client, err := c.paymentService.CreatePayment(c.requestContext(ctx), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Create payment failed")
	}

	return c.writeGateway(ctx, http.StatusCreated, mapper.CheckoutToType(client))
}

// StartPayment creates a checkout from query parameters and sends the user
// agent straight to the payment page.
func (c *PaymentController) StartPayment(ctx echo.Context) error {
	req, err := types.NewStartPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	client, err := c.paymentService.CreatePayment(c.requestContext(ctx), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Start payment failed")
	}

	if err := client.Redirect(ctx); err != nil {
		if errors.Is(err, provider.ErrNoAuthority) {
			return c.writeGateway(ctx, http.StatusOK, mapper.CheckoutToType(client))
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Redirect failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return nil
}

func (c *PaymentController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	resp, err := c.paymentService.VerifyPayment(c.requestContext(ctx), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Verify payment failed")
	}

	return c.writeGateway(ctx, http.StatusOK, mapper.ResponseToType(resp))
}

func (c *PaymentController) RefreshAuthority(ctx echo.Context) error {
	req, err := types.NewRefreshAuthorityRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	resp, err := c.paymentService.RefreshAuthority(c.requestContext(ctx), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Refresh authority failed")
	}

	return c.writeGateway(ctx, http.StatusOK, mapper.ResponseToType(resp))
}

func (c *PaymentController) ListUnverified(ctx echo.Context) error {
	resp, err := c.paymentService.ListUnverified(c.requestContext(ctx))
	if err != nil {
		return c.writeServiceError(ctx, err, "List unverified failed")
	}

	return c.writeGateway(ctx, http.StatusOK, mapper.ResponseToType(resp))
}

func (c *PaymentController) HandleCallback(ctx echo.Context) error {
	req, err := types.NewCallbackRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	resp, err := c.paymentService.HandleCallback(c.requestContext(ctx), req)
	if err != nil {
		if errors.Is(err, service.ErrPaymentCanceled) {
			return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Payment canceled"})
		}
		return c.writeServiceError(ctx, err, "Handle callback failed")
	}

	return c.writeGateway(ctx, http.StatusOK, mapper.ResponseToType(resp))
}

// writeGateway answers with okStatus when Zarinpal accepted the call, 502 when
// it could not be reached and 422 when it rejected the call.
func (c *PaymentController) writeGateway(ctx echo.Context, okStatus int, out *types.GatewayResponse) error {
	switch {
	case out.OK:
		return ctx.JSON(okStatus, out)
	case provider.IsLocalStatus(out.Status):
		return ctx.JSON(http.StatusBadGateway, out)
	default:
		return ctx.JSON(http.StatusUnprocessableEntity, out)
	}
}

func (c *PaymentController) writeServiceError(ctx echo.Context, err error, logMessage string) error {
	if errors.Is(err, service.ErrInvalidRequest) {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}
	factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(logMessage)
	return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func (c *PaymentController) requestContext(ctx echo.Context) context.Context {
	requestID := ctx.Request().Header.Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = ctx.Response().Header().Get(echo.HeaderXRequestID)
	}
	return factory.ContextWithRequestID(ctx.Request().Context(), requestID)
}
