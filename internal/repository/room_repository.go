package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrSlugTaken     = errors.New("room slug already taken")
	ErrNotMember     = errors.New("not a room member")
	ErrAlreadyMember = errors.New("already a room member")
	ErrLastOwner     = errors.New("room must retain at least one owner")
)

type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create creates a new room
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	room.LastActivityAt = now

	query := `
		INSERT INTO rooms (slug, name, is_system, ai_enabled, notifications_enabled,
			self_destruct_at, last_activity_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		room.Slug,
		room.Name,
		room.IsSystem,
		room.AIEnabled,
		room.NotificationsEnabled,
		room.SelfDestructAt,
		room.LastActivityAt,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "rooms.slug") {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	room.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get room id: %w", err)
	}

	return nil
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE id = ?`

	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	return &room, nil
}

// GetBySlug retrieves a room by slug
func (r *RoomRepository) GetBySlug(ctx context.Context, slug string) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE slug = ?`

	if err := r.db.GetContext(ctx, &room, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by slug: %w", err)
	}

	return &room, nil
}

// Update updates a room's mutable settings
func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	room.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE rooms
		SET name = ?, ai_enabled = ?, notifications_enabled = ?,
			self_destruct_at = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		room.Name,
		room.AIEnabled,
		room.NotificationsEnabled,
		room.SelfDestructAt,
		room.UpdatedAt,
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// Delete deletes a room; memberships and messages cascade
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// List lists all rooms with member counts, most recently active first
func (r *RoomRepository) List(ctx context.Context, limit, offset int) ([]*model.RoomWithMemberCount, error) {
	query := `
		SELECT r.*, COUNT(rm.id) AS member_count
		FROM rooms r
		LEFT JOIN room_members rm ON r.id = rm.room_id
		GROUP BY r.id
		ORDER BY r.last_activity_at DESC
		LIMIT ? OFFSET ?`

	var rooms []*model.RoomWithMemberCount
	if err := r.db.SelectContext(ctx, &rooms, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// ListByUserID lists rooms the user is a member of
func (r *RoomRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.RoomWithMemberCount, error) {
	query := `
		SELECT r.*, COUNT(rm2.id) AS member_count
		FROM rooms r
		INNER JOIN room_members rm ON r.id = rm.room_id AND rm.user_id = ?
		LEFT JOIN room_members rm2 ON r.id = rm2.room_id
		GROUP BY r.id
		ORDER BY r.last_activity_at DESC
		LIMIT ? OFFSET ?`

	var rooms []*model.RoomWithMemberCount
	if err := r.db.SelectContext(ctx, &rooms, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list user rooms: %w", err)
	}

	return rooms, nil
}

// CountRooms counts all rooms
func (r *RoomRepository) CountRooms(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

// BumpActivity updates room counters after a message was posted
func (r *RoomRepository) BumpActivity(ctx context.Context, roomID int64, aiRequest bool) error {
	aiDelta := 0
	if aiRequest {
		aiDelta = 1
	}

	query := `
		UPDATE rooms
		SET total_messages = total_messages + 1,
			total_ai_requests = total_ai_requests + ?,
			last_activity_at = ?,
			updated_at = ?
		WHERE id = ?`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, aiDelta, now, now, roomID)
	if err != nil {
		return fmt.Errorf("failed to bump room activity: %w", err)
	}

	return nil
}

// ---- Membership store ----

// GetMember retrieves the membership of a user in a room
func (r *RoomRepository) GetMember(ctx context.Context, roomID, userID int64) (*model.RoomMember, error) {
	var member model.RoomMember
	query := `SELECT * FROM room_members WHERE room_id = ? AND user_id = ?`

	if err := r.db.GetContext(ctx, &member, query, roomID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// AddMember adds a user to a room. The (room, user) pair is unique; adding an
// existing member fails with ErrAlreadyMember.
func (r *RoomRepository) AddMember(ctx context.Context, member *model.RoomMember) error {
	member.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO room_members (room_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		member.RoomID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "room_members.room_id") {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	member.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get member id: %w", err)
	}

	return nil
}

// UpdateMemberRole updates a member's role. Demoting the sole remaining owner
// is rejected with ErrLastOwner so the owner-count invariant holds across all
// mutations, not just removals.
func (r *RoomRepository) UpdateMemberRole(ctx context.Context, roomID, userID int64, role model.MemberRole) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current model.RoomMember
	if err := tx.GetContext(ctx, &current,
		`SELECT * FROM room_members WHERE room_id = ? AND user_id = ?`, roomID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("failed to get member: %w", err)
	}

	if current.Role == model.MemberRoleOwner && role != model.MemberRoleOwner {
		owners, err := countOwnersTx(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE room_members SET role = ? WHERE room_id = ? AND user_id = ?`,
		role, roomID, userID); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	return tx.Commit()
}

// RemoveMember removes a user from a room. Removing the sole remaining owner
// fails with ErrLastOwner; the guard and the delete share one transaction.
func (r *RoomRepository) RemoveMember(ctx context.Context, roomID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current model.RoomMember
	if err := tx.GetContext(ctx, &current,
		`SELECT * FROM room_members WHERE room_id = ? AND user_id = ?`, roomID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("failed to get member: %w", err)
	}

	if current.Role == model.MemberRoleOwner {
		owners, err := countOwnersTx(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return tx.Commit()
}

// ListMembers lists all members of a room with user info
func (r *RoomRepository) ListMembers(ctx context.Context, roomID int64) ([]*model.RoomMemberWithUser, error) {
	query := `
		SELECT rm.*, u.handle, u.name, u.role AS global_role, u.status, u.bio
		FROM room_members rm
		INNER JOIN users u ON rm.user_id = u.id
		WHERE rm.room_id = ?
		ORDER BY rm.role, rm.created_at`

	var members []*model.RoomMemberWithUser
	if err := r.db.SelectContext(ctx, &members, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// IsMember checks if user is a member of the room
func (r *RoomRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?)`

	if err := r.db.GetContext(ctx, &exists, query, roomID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}

// CountMembers counts room members
func (r *RoomRepository) CountMembers(ctx context.Context, roomID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM room_members WHERE room_id = ?`

	if err := r.db.GetContext(ctx, &count, query, roomID); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// CountOwners counts owner memberships of a room
func (r *RoomRepository) CountOwners(ctx context.Context, roomID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM room_members WHERE room_id = ? AND role = ?`

	if err := r.db.GetContext(ctx, &count, query, roomID, model.MemberRoleOwner); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}

	return count, nil
}

func countOwnersTx(ctx context.Context, tx *sqlx.Tx, roomID int64) (int, error) {
	var count int
	if err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM room_members WHERE room_id = ? AND role = ?`,
		roomID, model.MemberRoleOwner); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}

// isUniqueViolation matches SQLite unique-constraint failures against the
// named column prefix, e.g. "room_members.room_id".
func isUniqueViolation(err error, constraint string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), constraint)
}
