package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/sequence"
)

const requestIDLength = 10

var (
	ErrPaymentRequestNotFound      = errors.New("payment request not found")
	ErrPaymentRequestAlreadyExists = errors.New("payment request already exists")
)

const paymentRequestColumns = `
	id, request_id, channel_id, user_id, payment_method,
	amount, currency, request_payload, payment_request_result, payment_callback_result,
	request_status, created_date_utc, created_by, last_edited_date_utc, last_edited_by
`

type PaymentRequestRepository struct {
	db        *sql.DB
	sequences *sequence.Generator
}

func NewPaymentRequestRepository(db *sql.DB, sequences *sequence.Generator) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db, sequences: sequences}
}

// Create inserts the ledger row with a freshly minted request id. The
// collision check and the insert run in one transaction; the unique index on
// request_id is the backstop if two generators race past the check.
func (r *PaymentRequestRepository) Create(ctx context.Context, request *entity.PaymentRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	requestID, err := r.sequences.Generate(ctx, sequence.KindGeneral, "", requestIDLength,
		func(ctx context.Context, candidate string) (bool, error) {
			return existsByColumn(ctx, tx, "SELECT 1 FROM payment_requests WHERE request_id = ?", candidate)
		})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	request.RequestID = requestID
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.CreatedAt = now
	request.LastEditedAt = now

	query := `
		INSERT INTO payment_requests (` + paymentRequestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		request.ID,
		request.RequestID,
		request.ChannelID,
		request.UserID,
		request.PaymentMethod,
		request.Amount,
		request.Currency,
		request.RequestPayload,
		nullableStringValue(request.RequestResult),
		nullableStringValue(request.CallbackResult),
		request.RequestStatus,
		request.CreatedAt,
		nullableStringValue(request.CreatedBy),
		request.LastEditedAt,
		nullableStringValue(request.LastEditedBy),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentRequestAlreadyExists
		}
		return err
	}

	return tx.Commit()
}

// UpdateResult records the immediate provider response and the status it
// implies (PENDING for accepted pushes, terminal for card or failure). A
// SUCCESS result credits the channel's running balance in the same
// transaction, so a confirmed contribution and its credit commit atomically.
func (r *PaymentRequestRepository) UpdateResult(ctx context.Context, requestID, status, resultJSON string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE payment_requests
		SET request_status = ?, payment_request_result = ?, last_edited_date_utc = ?
		WHERE request_id = ?
	`
	result, err := tx.ExecContext(ctx, query, status, resultJSON, time.Now().UTC(), requestID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentRequestNotFound
	}

	if status == entity.PaymentRequestSuccess {
		var channelID string
		var amount decimal.Decimal
		row := tx.QueryRowContext(ctx, `SELECT channel_id, amount FROM payment_requests WHERE request_id = ?`, requestID)
		if err := row.Scan(&channelID, &amount); err != nil {
			return err
		}
		if err := creditChannelBalance(ctx, tx, channelID, amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PaymentRequestRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE request_id = ?`

	request := &entity.PaymentRequest{}
	err := scanPaymentRequest(r.db.QueryRowContext(ctx, query, requestID), request)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return request, nil
}

// ApplyCallbackResult reconciles a callback to its ledger row. The row is
// locked for the duration of the transaction; a callback arriving for an
// already-terminal row is a no-op, which makes duplicate deliveries safe.
// A SUCCESS transition credits the channel balance in the same transaction:
// if the credit fails, the row stays PENDING and a redelivered callback can
// settle it again. The returned bool reports whether a transition was applied.
func (r *PaymentRequestRepository) ApplyCallbackResult(ctx context.Context, requestID, status, payloadJSON string) (*entity.PaymentRequest, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE request_id = ? FOR UPDATE`

	request := &entity.PaymentRequest{}
	err = scanPaymentRequest(tx.QueryRowContext(ctx, query, requestID), request)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrPaymentRequestNotFound
	}
	if err != nil {
		return nil, false, err
	}

	if entity.TerminalPaymentStatus(request.RequestStatus) {
		return request, false, tx.Commit()
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE payment_requests
		SET request_status = ?, payment_callback_result = ?, last_edited_date_utc = ?
		WHERE request_id = ?
	`, status, payloadJSON, now, requestID)
	if err != nil {
		return nil, false, err
	}

	if status == entity.PaymentRequestSuccess {
		if err := creditChannelBalance(ctx, tx, request.ChannelID, request.Amount); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	request.RequestStatus = status
	request.CallbackResult = &payloadJSON
	request.LastEditedAt = now
	return request, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPaymentRequest(scan rowScanner, request *entity.PaymentRequest) error {
	var requestResult sql.NullString
	var callbackResult sql.NullString
	var createdBy sql.NullString
	var lastEditedBy sql.NullString

	err := scan.Scan(
		&request.ID,
		&request.RequestID,
		&request.ChannelID,
		&request.UserID,
		&request.PaymentMethod,
		&request.Amount,
		&request.Currency,
		&request.RequestPayload,
		&requestResult,
		&callbackResult,
		&request.RequestStatus,
		&request.CreatedAt,
		&createdBy,
		&request.LastEditedAt,
		&lastEditedBy,
	)
	if err != nil {
		return err
	}

	request.RequestResult = stringPtrFromNull(requestResult)
	request.CallbackResult = stringPtrFromNull(callbackResult)
	request.CreatedBy = stringPtrFromNull(createdBy)
	request.LastEditedBy = stringPtrFromNull(lastEditedBy)

	return nil
}
