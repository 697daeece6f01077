package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/Robaed/changachanga-dev/app/factory"
	"github.com/Robaed/changachanga-dev/app/mapper"
	"github.com/Robaed/changachanga-dev/app/service"
	"github.com/Robaed/changachanga-dev/app/types"
)

type ContributionController struct {
	contributionService *service.ContributionService
	logger              logrus.FieldLogger
}

func NewContributionController(contributionService *service.ContributionService) *ContributionController {
	return &ContributionController{
		contributionService: contributionService,
		logger:              factory.NewModuleLogger("contributions-controller"),
	}
}

func (c *ContributionController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *ContributionController) Contribute(ctx echo.Context) error {
	req, err := types.NewContributionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	channelNo := ctx.Param("channel_no")
	userID := ctx.Request().Header.Get("X-User-ID")

	item, err := c.contributionService.Contribute(ctx.Request().Context(), channelNo, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrPaymentRejected):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrChannelNotFound):
			return c.writeError(ctx, http.StatusNotFound, "channel not found")
		case errors.Is(err, service.ErrPaymentFailed):
			return c.writeError(ctx, http.StatusBadGateway, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Contribute failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.PaymentRequestEnvelopeResponse{PaymentRequest: mapper.PaymentRequestToResponse(item)})
}

func (c *ContributionController) GetPaymentRequest(ctx echo.Context) error {
	requestID := ctx.Param("request_id")
	if requestID == "" {
		return c.writeError(ctx, http.StatusBadRequest, "request_id is required")
	}

	item, err := c.contributionService.FindPaymentRequest(ctx.Request().Context(), requestID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentRequestNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment request not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get payment request failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentRequestEnvelopeResponse{PaymentRequest: mapper.PaymentRequestToResponse(item)})
}

func (c *ContributionController) HandleProviderNotification(ctx echo.Context) error {
	notification, err := types.NewProviderNotificationFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := notification.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	_, err = c.contributionService.HandleProviderNotification(ctx.Request().Context(), notification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentRequestNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment request not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Handle provider notification failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Provider notification processed"})
}

func (c *ContributionController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
