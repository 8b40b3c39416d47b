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
	ErrConnectionNotFound = errors.New("connection not found")
)

type ConnectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// GetByService retrieves a service connection by its service name
func (r *ConnectionRepository) GetByService(ctx context.Context, service string) (*model.Connection, error) {
	var conn model.Connection
	query := `SELECT * FROM connections WHERE service = ?`

	if err := r.db.GetContext(ctx, &conn, query, service); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return &conn, nil
}

// List lists all service connections
func (r *ConnectionRepository) List(ctx context.Context) ([]*model.Connection, error) {
	var conns []*model.Connection
	query := `SELECT * FROM connections ORDER BY service ASC`

	if err := r.db.SelectContext(ctx, &conns, query); err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	return conns, nil
}

// Upsert inserts or replaces a service connection
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *model.Connection) error {
	conn.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO connections (service, enabled, config, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			enabled = excluded.enabled,
			config = excluded.config,
			status = excluded.status,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query,
		conn.Service, conn.Enabled, conn.Config, conn.Status, conn.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	return nil
}

// UpdateStatus records the last observed status for a service
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, service, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE connections SET status = ?, updated_at = ? WHERE service = ?`,
		status, time.Now().UTC(), service)
	if err != nil {
		return fmt.Errorf("failed to update connection status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConnectionNotFound
	}

	return nil
}
