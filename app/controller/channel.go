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

type ChannelController struct {
	channelService *service.ChannelService
	logger         logrus.FieldLogger
}

func NewChannelController(channelService *service.ChannelService) *ChannelController {
	return &ChannelController{
		channelService: channelService,
		logger:         factory.NewModuleLogger("channels-controller"),
	}
}

func (c *ChannelController) CreateChannel(ctx echo.Context) error {
	req, err := types.NewCreateChannelRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.channelService.CreateChannel(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create channel failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusCreated, &types.ChannelEnvelopeResponse{Channel: mapper.ChannelToResponse(item)})
}

func (c *ChannelController) GetChannel(ctx echo.Context) error {
	channelNo := ctx.Param("channel_no")
	if channelNo == "" {
		return c.writeError(ctx, http.StatusBadRequest, "channel_no is required")
	}

	item, err := c.channelService.FindChannel(ctx.Request().Context(), channelNo)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "channel not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get channel failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ChannelEnvelopeResponse{Channel: mapper.ChannelToResponse(item)})
}

func (c *ChannelController) InviteParticipants(ctx echo.Context) error {
	req, err := types.NewInviteParticipantsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.channelService.InviteParticipants(ctx.Request().Context(), ctx.Param("channel_no"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrChannelNotFound):
			return c.writeError(ctx, http.StatusNotFound, "channel not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Invite participants failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, mapper.ChannelInvitesToResponse(items))
}

func (c *ChannelController) ListInvites(ctx echo.Context) error {
	items, err := c.channelService.ListInvites(ctx.Request().Context(), ctx.Param("channel_no"))
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "channel not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List invites failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.ChannelInvitesToResponse(items))
}

func (c *ChannelController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
