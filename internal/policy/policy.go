package policy

import (
	"strings"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// Action names a capability a caller may exercise. Handlers consult the
// policy instead of re-implementing role checks inline.
type Action string

const (
	ActionViewPortal       Action = "portal.view"
	ActionInitiateDues     Action = "dues.initiate"
	ActionOverrideDues     Action = "dues.override"
	ActionManageCycles     Action = "dues.manage_cycles"
	ActionViewLedger       Action = "finance.view_ledger"
	ActionRecordAdjustment Action = "finance.record_adjustment"
	ActionResolveReconcile Action = "finance.resolve_reconciliation"
	ActionManageMembers    Action = "members.manage"
	ActionAssignRoles      Action = "members.assign_roles"
	ActionJoinCommittee    Action = "committees.join"
	ActionManageCommittees Action = "committees.manage"
	ActionLogServiceHours  Action = "service_hours.log"
	ActionReviewHours      Action = "service_hours.review"
	ActionCreatePost       Action = "posts.create"
	ActionModeratePosts    Action = "posts.moderate"
)

// Identity is the authenticated caller as resolved by the session verifier.
type Identity struct {
	MemberID uuid.UUID
	Email    string
	Role     enums.MemberRole
	Status   enums.MemberStatus
}

// Resource identifies the object an action targets. Owner-scoped reads
// use OwnerID to let members act on their own records.
type Resource struct {
	Kind    string
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// minimumRole maps each action to the lowest role allowed to perform it.
var minimumRole = map[Action]enums.MemberRole{
	ActionViewPortal:       enums.MemberRoleMember,
	ActionInitiateDues:     enums.MemberRoleMember,
	ActionJoinCommittee:    enums.MemberRoleMember,
	ActionLogServiceHours:  enums.MemberRoleMember,
	ActionCreatePost:       enums.MemberRoleMember,
	ActionReviewHours:      enums.MemberRoleBoard,
	ActionModeratePosts:    enums.MemberRoleBoard,
	ActionManageCommittees: enums.MemberRoleBoard,
	ActionOverrideDues:     enums.MemberRoleTreasurer,
	ActionManageCycles:     enums.MemberRoleTreasurer,
	ActionViewLedger:       enums.MemberRoleTreasurer,
	ActionRecordAdjustment: enums.MemberRoleTreasurer,
	ActionResolveReconcile: enums.MemberRoleTreasurer,
	ActionManageMembers:    enums.MemberRoleTreasurer,
	ActionAssignRoles:      enums.MemberRolePresident,
}

// Policy is the single authorization decision point. The allow-list grants
// president-equivalent capability to statically configured emails.
type Policy struct {
	allowlist map[string]struct{}
}

// New builds a policy from the configured allow-list emails.
func New(allowlist []string) *Policy {
	set := make(map[string]struct{}, len(allowlist))
	for _, email := range allowlist {
		normalized := normalizeEmail(email)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return &Policy{allowlist: set}
}

// Can reports whether the identity may perform action on resource.
func (p *Policy) Can(identity Identity, action Action, resource Resource) bool {
	if identity.MemberID == uuid.Nil {
		return false
	}

	required, known := minimumRole[action]
	if !known {
		return false
	}

	// Non-active members are authenticated but locked out of everything
	// except looking at their own standing.
	if identity.Status != enums.MemberStatusActive {
		return action == ActionViewPortal && resource.OwnerID == identity.MemberID
	}

	role := p.EffectiveRole(identity)
	return role.AtLeast(required)
}

// EffectiveRole resolves the caller's capability, upgrading allow-listed
// emails to president regardless of the stored role.
func (p *Policy) EffectiveRole(identity Identity) enums.MemberRole {
	if p.IsAllowlisted(identity.Email) {
		return enums.MemberRolePresident
	}
	if !identity.Role.IsValid() {
		return enums.MemberRoleMember
	}
	return identity.Role
}

// IsAllowlisted reports whether the email carries elevated capability.
func (p *Policy) IsAllowlisted(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.allowlist[normalizeEmail(email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
