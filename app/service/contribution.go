package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/provider"
	"github.com/Robaed/changachanga-dev/app/repository"
	"github.com/Robaed/changachanga-dev/app/types"
)

type paymentRequestRepository interface {
	Create(ctx context.Context, request *entity.PaymentRequest) error
	UpdateResult(ctx context.Context, requestID, status, resultJSON string) error
	FindByRequestID(ctx context.Context, requestID string) (*entity.PaymentRequest, error)
	ApplyCallbackResult(ctx context.Context, requestID, status, payloadJSON string) (*entity.PaymentRequest, bool, error)
}

type channelRepository interface {
	Create(ctx context.Context, channel *entity.Channel) error
	FindByChannelNo(ctx context.Context, channelNo string) (*entity.Channel, error)
}

type providerRegistry interface {
	Get(method string) (provider.Client, error)
}

// ContributionService drives a contribution through the ledger and the
// matching payment rail, and reconciles provider callbacks afterwards.
type ContributionService struct {
	paymentRequests paymentRequestRepository
	channels        channelRepository
	providers       providerRegistry
	logger          logrus.FieldLogger
}

func NewContributionService(
	paymentRequests paymentRequestRepository,
	channels channelRepository,
	providers providerRegistry,
	logger logrus.FieldLogger,
) *ContributionService {
	return &ContributionService{
		paymentRequests: paymentRequests,
		channels:        channels,
		providers:       providers,
		logger:          logger,
	}
}

// Contribute records the request as INITIATED before any network call, then
// dispatches to the rail selected by payment method. The ledger row survives
// whatever happens next: provider failures mark it FAILED with the error
// recorded, never delete it.
func (s *ContributionService) Contribute(ctx context.Context, channelNo, userID string, req *types.ContributionRequest) (*entity.PaymentRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	client, err := s.providers.Get(req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported payment method %s", ErrInvalidRequest, req.PaymentMethod)
	}

	channel, err := s.channels.FindByChannelNo(ctx, channelNo)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	request := &entity.PaymentRequest{
		ChannelID:      channel.ID,
		UserID:         userID,
		PaymentMethod:  req.PaymentMethod,
		Amount:         req.Amount,
		Currency:       req.Currency,
		RequestPayload: string(payload),
		RequestStatus:  entity.PaymentRequestInitiated,
	}
	if err := s.paymentRequests.Create(ctx, request); err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"request_id":     request.RequestID,
		"channel_no":     channelNo,
		"payment_method": req.PaymentMethod,
	})

	input := &provider.PaymentInput{
		RequestID: request.RequestID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	}
	switch req.PaymentMethod {
	case entity.PaymentMethodMpesa:
		input.PhoneNumber = req.MpesaDetails.AccountNumber
	case entity.PaymentMethodCard:
		input.Card = &provider.CardDetails{
			Number:   req.CardDetails.CardNumber,
			ExpMonth: req.CardDetails.CardExpMonth,
			ExpYear:  req.CardDetails.CardExpYear,
		}
	}

	result, err := client.MakePayment(ctx, input)
	if err != nil {
		logger.WithError(err).Error("provider_payment_failed")
		s.recordProviderFailure(ctx, request, err)
		if provider.IsRejected(err) {
			return nil, fmt.Errorf("%w: %s", ErrPaymentRejected, err.Error())
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, err.Error())
	}

	// A SUCCESS result is credited to the channel balance by the repository,
	// inside the same transaction as the status update.
	status := ledgerStatusFromProvider(result.Status)
	resultJSON := string(result.ProviderData)
	if err := s.paymentRequests.UpdateResult(ctx, request.RequestID, status, resultJSON); err != nil {
		return nil, err
	}
	request.RequestStatus = status
	request.RequestResult = &resultJSON

	logger.WithField("status", status).Info("contribution_processed")
	return request, nil
}

// FindPaymentRequest returns the ledger row for a request id.
func (s *ContributionService) FindPaymentRequest(ctx context.Context, requestID string) (*entity.PaymentRequest, error) {
	request, err := s.paymentRequests.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrPaymentRequestNotFound
	}
	return request, nil
}

// HandleProviderNotification settles a PENDING ledger row from an async
// provider callback. Replays against rows that already reached a terminal
// status are acknowledged without changing anything, so the provider may
// deliver the same callback any number of times.
func (s *ContributionService) HandleProviderNotification(ctx context.Context, notification *types.ProviderNotification) (*entity.PaymentRequest, error) {
	if err := notification.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	status := entity.PaymentRequestFailed
	if notification.Succeeded {
		status = entity.PaymentRequestSuccess
	}

	request, applied, err := s.paymentRequests.ApplyCallbackResult(ctx, notification.RequestID, status, notification.Payload)
	if errors.Is(err, repository.ErrPaymentRequestNotFound) {
		return nil, ErrPaymentRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"request_id": notification.RequestID,
		"status":     request.RequestStatus,
	})

	if !applied {
		logger.Info("callback_replay_ignored")
		return request, nil
	}

	logger.Info("callback_applied")
	return request, nil
}

func (s *ContributionService) recordProviderFailure(ctx context.Context, request *entity.PaymentRequest, cause error) {
	resultJSON, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		resultJSON = []byte(`{"error":"provider request failed"}`)
	}

	if err := s.paymentRequests.UpdateResult(ctx, request.RequestID, entity.PaymentRequestFailed, string(resultJSON)); err != nil {
		s.logger.WithError(err).WithField("request_id", request.RequestID).Error("failed to record provider failure")
		return
	}

	failed := string(resultJSON)
	request.RequestStatus = entity.PaymentRequestFailed
	request.RequestResult = &failed
}

func ledgerStatusFromProvider(status provider.Status) string {
	switch status {
	case provider.StatusSuccess:
		return entity.PaymentRequestSuccess
	case provider.StatusPending:
		return entity.PaymentRequestPending
	default:
		return entity.PaymentRequestFailed
	}
}
