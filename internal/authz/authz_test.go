package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestCan(t *testing.T) {
	manager := Actor{ID: 10, Role: RoleManager}
	admin := Actor{ID: 1, Role: RoleAdmin}
	employee := Actor{ID: 20, Role: RoleEmployee}
	pending := Actor{ID: 30, Role: RolePending}

	reportOfManager := Target{OwnerID: 21, OwnerManagerID: uintPtr(10)}
	strangerExpense := Target{OwnerID: 22, OwnerManagerID: uintPtr(11)}
	unmanaged := Target{OwnerID: 23}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		target Target
		want   bool
	}{
		{"admin decides any expense", admin, ActionDecideExpense, strangerExpense, true},
		{"admin assigns roles", admin, ActionAssignRole, Target{OwnerID: 99}, true},
		{"manager decides direct report's expense", manager, ActionDecideExpense, reportOfManager, true},
		{"manager cannot decide another team's expense", manager, ActionDecideExpense, strangerExpense, false},
		{"manager cannot decide unmanaged user's expense", manager, ActionDecideExpense, unmanaged, false},
		{"manager cannot decide own expense", manager, ActionDecideExpense, Target{OwnerID: 10, OwnerManagerID: uintPtr(5)}, false},
		{"manager cannot assign roles", manager, ActionAssignRole, reportOfManager, false},
		{"manager lists own team", manager, ActionListUsers, reportOfManager, true},
		{"manager lists self", manager, ActionListUsers, Target{OwnerID: 10}, true},
		{"manager cannot list strangers", manager, ActionListUsers, strangerExpense, false},
		{"employee submits own expense", employee, ActionSubmitExpense, Target{OwnerID: 20}, true},
		{"employee cannot submit for someone else", employee, ActionSubmitExpense, Target{OwnerID: 21}, false},
		{"employee cannot decide", employee, ActionDecideExpense, Target{OwnerID: 20}, false},
		{"employee cannot list users", employee, ActionListUsers, Target{OwnerID: 20}, false},
		{"employee views own stats", employee, ActionViewStats, Target{OwnerID: 20}, true},
		{"pending user submits own expense", pending, ActionSubmitExpense, Target{OwnerID: 30}, true},
		{"pending user cannot list pending users", pending, ActionListPendingUsers, Target{OwnerID: 30}, false},
		{"pending user updates own profile", pending, ActionUpdateProfile, Target{OwnerID: 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.action, tt.target))
		})
	}
}

func TestScopeOf(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		action Action
		want   Scope
	}{
		{"admin decide is company wide", RoleAdmin, ActionDecideExpense, ScopeAny},
		{"manager pending approvals are team scoped", RoleManager, ActionListPendingApprovals, ScopeTeam},
		{"manager user listing includes self", RoleManager, ActionListUsers, ScopeTeamOrSelf},
		{"employee has no approval grant", RoleEmployee, ActionListPendingApprovals, ScopeNone},
		{"pending has no assign grant", RolePending, ActionAssignRole, ScopeNone},
		{"unknown role denied", Role("Ghost"), ActionSubmitExpense, ScopeNone},
		{"unknown action denied", RoleAdmin, Action("expense:teleport"), ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeOf(tt.role, tt.action))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Manager")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	assert.NotContains(t, AssignableRoles(), RolePending)
}

func TestIsApprover(t *testing.T) {
	assert.True(t, RoleManager.IsApprover())
	assert.True(t, RoleAdmin.IsApprover())
	assert.False(t, RoleEmployee.IsApprover())
	assert.False(t, RolePending.IsApprover())
}
