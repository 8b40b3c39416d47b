package permission

import (
	"errors"
	"testing"

	"github.com/homehub/panel/internal/model"
)

func member(role model.MemberRole) *model.RoomMember {
	return &model.RoomMember{ID: 1, RoomID: 42, UserID: 7, Role: role}
}

func TestEvaluate_Table(t *testing.T) {
	tests := []struct {
		name       string
		action     Action
		membership *model.RoomMember
		globalRole model.GlobalRole
		allowed    bool
	}{
		// View room metadata
		{"view room as member", ActionViewRoom, member(model.MemberRoleMember), model.GlobalRoleUser, true},
		{"view room as global admin non-member", ActionViewRoom, nil, model.GlobalRoleAdmin, true},
		{"view room as global owner non-member", ActionViewRoom, nil, model.GlobalRoleOwner, true},
		{"view room as stranger", ActionViewRoom, nil, model.GlobalRoleUser, false},

		// Messages: membership only, no global bypass
		{"view messages as member", ActionViewMessages, member(model.MemberRoleMember), model.GlobalRoleUser, true},
		{"view messages as global admin non-member", ActionViewMessages, nil, model.GlobalRoleAdmin, false},
		{"view messages as global owner non-member", ActionViewMessages, nil, model.GlobalRoleOwner, false},

		// Member list mirrors message visibility
		{"list members as member", ActionListMembers, member(model.MemberRoleMember), model.GlobalRoleUser, true},
		{"list members as global admin non-member", ActionListMembers, nil, model.GlobalRoleAdmin, false},

		// Posting: role within the room is irrelevant
		{"post as plain member", ActionPostMessage, member(model.MemberRoleMember), model.GlobalRoleChild, true},
		{"post as non-member", ActionPostMessage, nil, model.GlobalRoleAdmin, false},

		// Add member
		{"add member as room admin", ActionAddMember, member(model.MemberRoleAdmin), model.GlobalRoleUser, true},
		{"add member as room owner", ActionAddMember, member(model.MemberRoleOwner), model.GlobalRoleUser, true},
		{"add member as plain member", ActionAddMember, member(model.MemberRoleMember), model.GlobalRoleUser, false},
		{"add member as global admin non-member", ActionAddMember, nil, model.GlobalRoleAdmin, true},

		// Role update: owners only
		{"update role as room owner", ActionUpdateMemberRole, member(model.MemberRoleOwner), model.GlobalRoleUser, true},
		{"update role as room admin", ActionUpdateMemberRole, member(model.MemberRoleAdmin), model.GlobalRoleUser, false},
		{"update role as global owner", ActionUpdateMemberRole, nil, model.GlobalRoleOwner, true},
		{"update role as global admin", ActionUpdateMemberRole, nil, model.GlobalRoleAdmin, false},

		// Settings: room owner/admin, or global admin (not global owner)
		{"settings as room admin", ActionUpdateSettings, member(model.MemberRoleAdmin), model.GlobalRoleUser, true},
		{"settings as plain member", ActionUpdateSettings, member(model.MemberRoleMember), model.GlobalRoleUser, false},
		{"settings as global admin", ActionUpdateSettings, nil, model.GlobalRoleAdmin, true},
		{"settings as global owner", ActionUpdateSettings, nil, model.GlobalRoleOwner, false},

		// Delete: room owner or global owner
		{"delete as room owner", ActionDeleteRoom, member(model.MemberRoleOwner), model.GlobalRoleUser, true},
		{"delete as room admin", ActionDeleteRoom, member(model.MemberRoleAdmin), model.GlobalRoleUser, false},
		{"delete as global owner", ActionDeleteRoom, nil, model.GlobalRoleOwner, true},
		{"delete as global admin", ActionDeleteRoom, nil, model.GlobalRoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(tt.action, 42, tt.membership, tt.globalRole)
			if tt.allowed && err != nil {
				t.Errorf("Expected %s to be allowed, got %v", tt.action, err)
			}
			if !tt.allowed && err == nil {
				t.Errorf("Expected %s to be forbidden", tt.action)
			}
		})
	}
}

func TestEvaluate_ForbiddenCarriesContext(t *testing.T) {
	err := Evaluate(ActionViewMessages, 42, nil, model.GlobalRoleAdmin)
	if err == nil {
		t.Fatal("Expected denial")
	}

	var forbidden *Forbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("Expected *Forbidden, got %T", err)
	}
	if forbidden.Action != ActionViewMessages {
		t.Errorf("Expected action %s, got %s", ActionViewMessages, forbidden.Action)
	}
	if forbidden.RoomID != 42 {
		t.Errorf("Expected room id 42, got %d", forbidden.RoomID)
	}
}

func TestEvaluate_UnknownActionDenied(t *testing.T) {
	err := Evaluate(Action("format_disk"), 1, member(model.MemberRoleOwner), model.GlobalRoleOwner)
	if err == nil {
		t.Error("Expected unknown action to be denied")
	}
}

func TestEvaluateRemoveMember_Self(t *testing.T) {
	// A plain member may always remove themselves
	if err := EvaluateRemoveMember(42, 7, 7, member(model.MemberRoleMember), model.GlobalRoleUser); err != nil {
		t.Errorf("Expected self-removal to be allowed, got %v", err)
	}
}

func TestEvaluateRemoveMember_Other(t *testing.T) {
	// A plain member may not remove someone else
	if err := EvaluateRemoveMember(42, 7, 9, member(model.MemberRoleMember), model.GlobalRoleUser); err == nil {
		t.Error("Expected removal of another member to be forbidden")
	}

	// A room admin may
	if err := EvaluateRemoveMember(42, 7, 9, member(model.MemberRoleAdmin), model.GlobalRoleUser); err != nil {
		t.Errorf("Expected room admin removal to be allowed, got %v", err)
	}

	// So may a global admin without membership
	if err := EvaluateRemoveMember(42, 7, 9, nil, model.GlobalRoleAdmin); err != nil {
		t.Errorf("Expected global admin removal to be allowed, got %v", err)
	}
}
