// Package permission decides whether an acting user may perform a room-scoped
// action. Decisions are pure functions over the actor's membership (nil when
// absent) and global role; the package performs no I/O and never logs.
//
// Management rights and content visibility are deliberately separate: a global
// admin can administer room lifecycle and membership without ever gaining
// access to messages or the member list of rooms they do not belong to.
package permission

import (
	"fmt"
	"net/http"

	apperrors "github.com/homehub/panel/internal/pkg/errors"

	"github.com/homehub/panel/internal/model"
)

type Action string

const (
	ActionViewRoom         Action = "view_room"
	ActionViewMessages     Action = "view_messages"
	ActionListMembers      Action = "list_members"
	ActionPostMessage      Action = "post_message"
	ActionAddMember        Action = "add_member"
	ActionUpdateMemberRole Action = "update_member_role"
	ActionRemoveMember     Action = "remove_member"
	ActionUpdateSettings   Action = "update_settings"
	ActionDeleteRoom       Action = "delete_room"
)

// Forbidden is returned for every denial. It carries the action and room so
// callers can audit-log the refusal; the evaluator itself never logs.
type Forbidden struct {
	Action Action
	RoomID int64
}

func (e *Forbidden) Error() string {
	return fmt.Sprintf("action %s forbidden in room %d", e.Action, e.RoomID)
}

// AppError converts the denial into the HTTP error taxonomy.
func (e *Forbidden) AppError() *apperrors.AppError {
	return apperrors.Wrap(e, http.StatusForbidden, "permission denied").
		WithDetails(map[string]interface{}{"action": string(e.Action), "room_id": e.RoomID})
}

type rule struct {
	anyMember   bool
	memberRoles []model.MemberRole
	globalRoles []model.GlobalRole
}

// rules is the single source of truth for room authorization. Note the
// asymmetries that are contract, not accident: view_messages/list_members have
// no global bypass, and update_settings admits global admin but not global
// owner.
var rules = map[Action]rule{
	ActionViewRoom: {
		anyMember:   true,
		globalRoles: []model.GlobalRole{model.GlobalRoleOwner, model.GlobalRoleAdmin},
	},
	ActionViewMessages: {
		anyMember: true,
	},
	ActionListMembers: {
		anyMember: true,
	},
	ActionPostMessage: {
		anyMember: true,
	},
	ActionAddMember: {
		memberRoles: []model.MemberRole{model.MemberRoleOwner, model.MemberRoleAdmin},
		globalRoles: []model.GlobalRole{model.GlobalRoleOwner, model.GlobalRoleAdmin},
	},
	ActionUpdateMemberRole: {
		memberRoles: []model.MemberRole{model.MemberRoleOwner},
		globalRoles: []model.GlobalRole{model.GlobalRoleOwner},
	},
	ActionRemoveMember: {
		memberRoles: []model.MemberRole{model.MemberRoleOwner, model.MemberRoleAdmin},
		globalRoles: []model.GlobalRole{model.GlobalRoleOwner, model.GlobalRoleAdmin},
	},
	ActionUpdateSettings: {
		memberRoles: []model.MemberRole{model.MemberRoleOwner, model.MemberRoleAdmin},
		globalRoles: []model.GlobalRole{model.GlobalRoleAdmin},
	},
	ActionDeleteRoom: {
		memberRoles: []model.MemberRole{model.MemberRoleOwner},
		globalRoles: []model.GlobalRole{model.GlobalRoleOwner},
	},
}

// Evaluate authorizes action against the actor's membership and global role.
// membership is nil when the actor has no membership in the room. Returns nil
// when allowed, or a *Forbidden carrying the action and room id.
func Evaluate(action Action, roomID int64, membership *model.RoomMember, globalRole model.GlobalRole) error {
	r, ok := rules[action]
	if !ok {
		return &Forbidden{Action: action, RoomID: roomID}
	}

	if membership != nil {
		if r.anyMember {
			return nil
		}
		for _, role := range r.memberRoles {
			if membership.Role == role {
				return nil
			}
		}
	}

	for _, role := range r.globalRoles {
		if globalRole == role {
			return nil
		}
	}

	return &Forbidden{Action: action, RoomID: roomID}
}

// EvaluateRemoveMember authorizes removing targetID from a room. Self-removal
// (leaving) is always permitted; the membership store's last-owner guard still
// applies afterwards.
func EvaluateRemoveMember(roomID, actorID, targetID int64, membership *model.RoomMember, globalRole model.GlobalRole) error {
	if actorID == targetID {
		return nil
	}
	return Evaluate(ActionRemoveMember, roomID, membership, globalRole)
}
