package mapper

import (
	"encoding/json"
	"time"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/types"
)

func PaymentRequestToResponse(request *entity.PaymentRequest) *types.PaymentRequestResponse {
	response := &types.PaymentRequestResponse{
		RequestID:     request.RequestID,
		ChannelID:     request.ChannelID,
		PaymentMethod: request.PaymentMethod,
		Amount:        request.Amount.String(),
		Currency:      request.Currency,
		Status:        request.RequestStatus,
		CreatedAt:     request.CreatedAt.Format(time.RFC3339),
	}

	// Surface the most recent provider payload: the callback supersedes the
	// immediate request result.
	if request.CallbackResult != nil {
		response.ProviderData = json.RawMessage(*request.CallbackResult)
	} else if request.RequestResult != nil {
		response.ProviderData = json.RawMessage(*request.RequestResult)
	}

	return response
}

func ChannelToResponse(channel *entity.Channel) *types.ChannelResponse {
	return &types.ChannelResponse{
		ChannelNo:      channel.ChannelNo,
		Code:           channel.Code,
		Name:           channel.Name,
		Title:          channel.Title,
		Description:    channel.Description,
		RunningBalance: channel.RunningBalance.String(),
		CreatedAt:      channel.CreatedAt.Format(time.RFC3339),
	}
}

func ChannelInvitesToResponse(invites []*entity.ChannelInvite) *types.ListChannelInvitesResponse {
	response := &types.ListChannelInvitesResponse{
		Invites: make([]*types.ChannelInviteResponse, 0, len(invites)),
	}
	for _, invite := range invites {
		response.Invites = append(response.Invites, &types.ChannelInviteResponse{
			InviteCode:   invite.InviteCode,
			PhoneNumber:  invite.PhoneNumber,
			InviteStatus: invite.InviteStatus,
		})
	}
	return response
}
