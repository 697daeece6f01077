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

const (
	channelNoLength   = 6
	channelCodeLength = 6
)

var ErrChannelNotFound = errors.New("channel not found")

const channelColumns = `
	id, channel_no, code, account_no, name, title, description,
	link, image_url, video_url, running_balance,
	created_date_utc, created_by, last_edited_date_utc
`

type ChannelRepository struct {
	db        *sql.DB
	sequences *sequence.Generator
}

func NewChannelRepository(db *sql.DB, sequences *sequence.Generator) *ChannelRepository {
	return &ChannelRepository{db: db, sequences: sequences}
}

// Create mints the channel's public codes and inserts the row in one
// transaction. channel_no is "CH" + 6 digits, code is 6 alphanumerics; both
// columns carry unique indexes as the backstop.
func (r *ChannelRepository) Create(ctx context.Context, channel *entity.Channel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	channelNo, err := r.sequences.Generate(ctx, sequence.KindNumber, "CH", channelNoLength,
		func(ctx context.Context, candidate string) (bool, error) {
			return existsByColumn(ctx, tx, "SELECT 1 FROM channels WHERE channel_no = ?", candidate)
		})
	if err != nil {
		return err
	}

	code, err := r.sequences.Generate(ctx, sequence.KindGeneral, "", channelCodeLength,
		func(ctx context.Context, candidate string) (bool, error) {
			return existsByColumn(ctx, tx, "SELECT 1 FROM channels WHERE code = ?", candidate)
		})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	channel.ChannelNo = channelNo
	channel.Code = code
	channel.CreatedAt = now
	channel.LastEditedAt = now

	query := `
		INSERT INTO channels (` + channelColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		channel.ID,
		channel.ChannelNo,
		channel.Code,
		channel.AccountNo,
		channel.Name,
		channel.Title,
		channel.Description,
		nullableStringValue(channel.Link),
		nullableStringValue(channel.ImageURL),
		nullableStringValue(channel.VideoURL),
		channel.RunningBalance,
		channel.CreatedAt,
		nullableStringValue(channel.CreatedBy),
		channel.LastEditedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ChannelRepository) FindByChannelNo(ctx context.Context, channelNo string) (*entity.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE channel_no = ?`

	channel := &entity.Channel{}
	err := scanChannel(r.db.QueryRowContext(ctx, query, channelNo), channel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return channel, nil
}

// creditChannelBalance adds a confirmed contribution to the channel's running
// balance as a single in-database increment, never a fetch-modify-write. It
// runs on the caller's DBTX so the credit commits or rolls back together with
// the ledger transition that confirmed the contribution.
func creditChannelBalance(ctx context.Context, db DBTX, channelID string, amount decimal.Decimal) error {
	query := `
		UPDATE channels
		SET running_balance = running_balance + ?, last_edited_date_utc = ?
		WHERE id = ?
	`
	result, err := db.ExecContext(ctx, query, amount, time.Now().UTC(), channelID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChannelNotFound
	}

	return nil
}

func scanChannel(scan rowScanner, channel *entity.Channel) error {
	var link sql.NullString
	var imageURL sql.NullString
	var videoURL sql.NullString
	var createdBy sql.NullString

	err := scan.Scan(
		&channel.ID,
		&channel.ChannelNo,
		&channel.Code,
		&channel.AccountNo,
		&channel.Name,
		&channel.Title,
		&channel.Description,
		&link,
		&imageURL,
		&videoURL,
		&channel.RunningBalance,
		&channel.CreatedAt,
		&createdBy,
		&channel.LastEditedAt,
	)
	if err != nil {
		return err
	}

	channel.Link = stringPtrFromNull(link)
	channel.ImageURL = stringPtrFromNull(imageURL)
	channel.VideoURL = stringPtrFromNull(videoURL)
	channel.CreatedBy = stringPtrFromNull(createdBy)

	return nil
}
