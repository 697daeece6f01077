package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/sequence"
)

const inviteCodeLength = 6

var ErrChannelInviteNotFound = errors.New("channel invite not found")

type ChannelInviteRepository struct {
	db        *sql.DB
	sequences *sequence.Generator
}

func NewChannelInviteRepository(db *sql.DB, sequences *sequence.Generator) *ChannelInviteRepository {
	return &ChannelInviteRepository{db: db, sequences: sequences}
}

func (r *ChannelInviteRepository) Create(ctx context.Context, invite *entity.ChannelInvite) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inviteCode, err := r.sequences.Generate(ctx, sequence.KindGeneral, "", inviteCodeLength,
		func(ctx context.Context, candidate string) (bool, error) {
			return existsByColumn(ctx, tx, "SELECT 1 FROM channel_invites WHERE invite_code = ?", candidate)
		})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	invite.InviteCode = inviteCode
	invite.CreatedAt = now
	invite.LastEditedAt = now

	query := `
		INSERT INTO channel_invites (
			id, channel_id, phone_number, invite_code, invite_status,
			created_date_utc, created_by, last_edited_date_utc
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		invite.ID,
		invite.ChannelID,
		invite.PhoneNumber,
		invite.InviteCode,
		invite.InviteStatus,
		invite.CreatedAt,
		nullableStringValue(invite.CreatedBy),
		invite.LastEditedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ChannelInviteRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE channel_invites
		SET invite_status = ?, last_edited_date_utc = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChannelInviteNotFound
	}

	return nil
}

func (r *ChannelInviteRepository) ListByChannel(ctx context.Context, channelID string) ([]*entity.ChannelInvite, error) {
	query := `
		SELECT id, channel_id, phone_number, invite_code, invite_status,
			created_date_utc, created_by, last_edited_date_utc
		FROM channel_invites
		WHERE channel_id = ?
		ORDER BY created_date_utc ASC
	`

	rows, err := r.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]*entity.ChannelInvite, 0)
	for rows.Next() {
		invite := &entity.ChannelInvite{}
		var createdBy sql.NullString
		err := rows.Scan(
			&invite.ID,
			&invite.ChannelID,
			&invite.PhoneNumber,
			&invite.InviteCode,
			&invite.InviteStatus,
			&invite.CreatedAt,
			&createdBy,
			&invite.LastEditedAt,
		)
		if err != nil {
			return nil, err
		}
		invite.CreatedBy = stringPtrFromNull(createdBy)
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return invites, nil
}
