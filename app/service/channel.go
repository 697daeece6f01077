package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/messaging"
	"github.com/Robaed/changachanga-dev/app/types"
)

type channelInviteRepository interface {
	Create(ctx context.Context, invite *entity.ChannelInvite) error
	UpdateStatus(ctx context.Context, id, status string) error
	ListByChannel(ctx context.Context, channelID string) ([]*entity.ChannelInvite, error)
}

// ChannelService manages fundraising channels and participant invites.
type ChannelService struct {
	channels channelRepository
	invites  channelInviteRepository
	sms      messaging.Sender
	logger   logrus.FieldLogger
}

func NewChannelService(
	channels channelRepository,
	invites channelInviteRepository,
	sms messaging.Sender,
	logger logrus.FieldLogger,
) *ChannelService {
	return &ChannelService{
		channels: channels,
		invites:  invites,
		sms:      sms,
		logger:   logger,
	}
}

func (s *ChannelService) CreateChannel(ctx context.Context, req *types.CreateChannelRequest) (*entity.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	channel := &entity.Channel{
		AccountNo:      req.AccountNo,
		Name:           req.Name,
		Title:          req.Title,
		Description:    req.Description,
		RunningBalance: decimal.Zero,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"channel_no": channel.ChannelNo,
		"name":       channel.Name,
	}).Info("channel_created")

	return channel, nil
}

func (s *ChannelService) FindChannel(ctx context.Context, channelNo string) (*entity.Channel, error) {
	channel, err := s.channels.FindByChannelNo(ctx, channelNo)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	return channel, nil
}

// InviteParticipants records an invite per phone number and delivers the
// invite code by SMS. A delivery failure leaves the invite in PENDING so it
// can be resent; it does not fail the whole batch.
func (s *ChannelService) InviteParticipants(ctx context.Context, channelNo string, req *types.InviteParticipantsRequest) ([]*entity.ChannelInvite, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	channel, err := s.channels.FindByChannelNo(ctx, channelNo)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}

	invites := make([]*entity.ChannelInvite, 0, len(req.PhoneNumbers))
	for _, phoneNumber := range req.PhoneNumbers {
		invite := &entity.ChannelInvite{
			ChannelID:    channel.ID,
			PhoneNumber:  phoneNumber,
			InviteStatus: entity.InviteStatusPending,
		}
		if err := s.invites.Create(ctx, invite); err != nil {
			return nil, err
		}

		text := fmt.Sprintf(
			"You have been invited to contribute to %s on ChangaChanga. Join with invite code %s.",
			channel.Name, invite.InviteCode,
		)
		if err := s.sms.SendMessage(ctx, text, phoneNumber); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"channel_no":   channelNo,
				"phone_number": phoneNumber,
			}).Error("invite_sms_failed")
			invites = append(invites, invite)
			continue
		}

		if err := s.invites.UpdateStatus(ctx, invite.ID, entity.InviteStatusSent); err != nil {
			return nil, err
		}
		invite.InviteStatus = entity.InviteStatusSent
		invites = append(invites, invite)
	}

	return invites, nil
}

func (s *ChannelService) ListInvites(ctx context.Context, channelNo string) ([]*entity.ChannelInvite, error) {
	channel, err := s.channels.FindByChannelNo(ctx, channelNo)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	return s.invites.ListByChannel(ctx, channel.ID)
}
