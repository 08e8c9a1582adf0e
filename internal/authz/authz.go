// Package authz holds the pure authorization rules: given who is acting,
// what they want to do, and whose resource it is, decide allow or deny.
// It performs no I/O; callers resolve users and expenses first.
package authz

// Action enumerates everything the API lets a caller attempt.
type Action string

const (
	ActionSubmitExpense        Action = "expense:submit"
	ActionListOwnExpenses      Action = "expense:list_own"
	ActionViewStats            Action = "expense:stats"
	ActionListPendingApprovals Action = "expense:list_pending"
	ActionDecideExpense        Action = "expense:decide"
	ActionListUsers            Action = "user:list"
	ActionListPendingUsers     Action = "user:list_pending"
	ActionAssignRole           Action = "user:assign_role"
	ActionListManagers         Action = "user:list_managers"
	ActionUpdateProfile        Action = "user:update_profile"
	ActionViewSelf             Action = "user:view_self"
)

// Scope is how far a role's grant for an action reaches.
type Scope int

const (
	// ScopeNone denies the action entirely.
	ScopeNone Scope = iota
	// ScopeSelf allows the action only on the actor's own resources.
	ScopeSelf
	// ScopeTeam allows the action on resources owned by the actor's direct reports.
	ScopeTeam
	// ScopeTeamOrSelf is ScopeTeam plus the actor's own resources.
	ScopeTeamOrSelf
	// ScopeAny allows the action on every resource in the company.
	ScopeAny
)

// Actor identifies the authenticated caller.
type Actor struct {
	ID   uint
	Role Role
}

// Target identifies whose resource the action touches. OwnerManagerID is the
// resource owner's manager reference, used for team scoping.
type Target struct {
	OwnerID        uint
	OwnerManagerID *uint
}

// Self builds a target owned by the actor, for actions without a foreign resource.
func (a Actor) Self() Target {
	return Target{OwnerID: a.ID}
}

// grants is the single authorization table. Adding a role or an action is a
// one-place change here.
var grants = map[Role]map[Action]Scope{
	RoleAdmin: {
		ActionSubmitExpense:        ScopeAny,
		ActionListOwnExpenses:      ScopeAny,
		ActionViewStats:            ScopeAny,
		ActionListPendingApprovals: ScopeAny,
		ActionDecideExpense:        ScopeAny,
		ActionListUsers:            ScopeAny,
		ActionListPendingUsers:     ScopeAny,
		ActionAssignRole:           ScopeAny,
		ActionListManagers:         ScopeAny,
		ActionUpdateProfile:        ScopeAny,
		ActionViewSelf:             ScopeAny,
	},
	RoleManager: {
		ActionSubmitExpense:        ScopeSelf,
		ActionListOwnExpenses:      ScopeSelf,
		ActionViewStats:            ScopeSelf,
		ActionListPendingApprovals: ScopeTeam,
		ActionDecideExpense:        ScopeTeam,
		ActionListUsers:            ScopeTeamOrSelf,
		ActionUpdateProfile:        ScopeSelf,
		ActionViewSelf:             ScopeSelf,
	},
	RoleEmployee: {
		ActionSubmitExpense:   ScopeSelf,
		ActionListOwnExpenses: ScopeSelf,
		ActionViewStats:       ScopeSelf,
		ActionUpdateProfile:   ScopeSelf,
		ActionViewSelf:        ScopeSelf,
	},
	RolePending: {
		ActionSubmitExpense:   ScopeSelf,
		ActionListOwnExpenses: ScopeSelf,
		ActionViewStats:       ScopeSelf,
		ActionUpdateProfile:   ScopeSelf,
		ActionViewSelf:        ScopeSelf,
	},
}

// ScopeOf returns the actor role's grant for an action, ScopeNone when absent.
func ScopeOf(role Role, action Action) Scope {
	return grants[role][action]
}

// Can decides whether the actor may perform the action on the target.
func Can(actor Actor, action Action, target Target) bool {
	switch ScopeOf(actor.Role, action) {
	case ScopeAny:
		return true
	case ScopeTeamOrSelf:
		return target.OwnerID == actor.ID || isReport(actor, target)
	case ScopeTeam:
		return isReport(actor, target)
	case ScopeSelf:
		return target.OwnerID == actor.ID
	default:
		return false
	}
}

func isReport(actor Actor, target Target) bool {
	return target.OwnerManagerID != nil && *target.OwnerManagerID == actor.ID
}
