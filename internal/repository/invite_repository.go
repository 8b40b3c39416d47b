package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrCodeTaken      = errors.New("invite code already exists")
)

type InviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create creates a new invite
func (r *InviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	invite.CreatedAt = time.Now().UTC()
	if invite.Status == "" {
		invite.Status = model.InviteStatusActive
	}

	query := `
		INSERT INTO invites (code, uses, max_uses, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		invite.Code,
		invite.Uses,
		invite.MaxUses,
		invite.Status,
		invite.CreatedBy,
		invite.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "invites.code") {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}

	invite.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get invite id: %w", err)
	}

	return nil
}

// GetByID retrieves an invite by ID
func (r *InviteRepository) GetByID(ctx context.Context, id int64) (*model.Invite, error) {
	var invite model.Invite
	query := `SELECT * FROM invites WHERE id = ?`

	if err := r.db.GetContext(ctx, &invite, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by id: %w", err)
	}

	return &invite, nil
}

// GetByCode retrieves an invite by code
func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*model.Invite, error) {
	var invite model.Invite
	query := `SELECT * FROM invites WHERE code = ?`

	if err := r.db.GetContext(ctx, &invite, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by code: %w", err)
	}

	return &invite, nil
}

// List lists all invites, newest first
func (r *InviteRepository) List(ctx context.Context) ([]*model.Invite, error) {
	var invites []*model.Invite
	query := `SELECT * FROM invites ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &invites, query); err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	return invites, nil
}

// Redeem consumes one use of an active invite, marking it exhausted when the
// final use is taken. The check and the increment share one transaction.
func (r *InviteRepository) Redeem(ctx context.Context, code string) (*model.Invite, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var invite model.Invite
	if err := tx.GetContext(ctx, &invite, `SELECT * FROM invites WHERE code = ?`, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	if !invite.Redeemable() {
		return &invite, nil
	}

	invite.Uses++
	if invite.Uses >= invite.MaxUses {
		invite.Status = model.InviteStatusExhausted
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE invites SET uses = ?, status = ? WHERE id = ?`,
		invite.Uses, invite.Status, invite.ID); err != nil {
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redeem: %w", err)
	}

	return &invite, nil
}

// UpdateStatus sets an invite's status (used for revocation)
func (r *InviteRepository) UpdateStatus(ctx context.Context, id int64, status model.InviteStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invites SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInviteNotFound
	}

	return nil
}

// Delete deletes an invite
func (r *InviteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInviteNotFound
	}

	return nil
}
