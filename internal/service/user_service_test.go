package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/authz"
	"expenseflow/internal/model"
)

func adminUser() *model.User {
	return &model.User{ID: 1, Role: authz.RoleAdmin, CompanyID: 1}
}

func TestUserService_AssignRole(t *testing.T) {
	managerID := uint(10)

	tests := []struct {
		name          string
		actor         *model.User
		targetID      uint
		role          authz.Role
		managerID     *uint
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "admin promotes pending user to employee",
			actor:     adminUser(),
			targetID:  30,
			role:      authz.RoleEmployee,
			managerID: &managerID,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil).Once()
				m.On("FindByID", mock.Anything, managerID).
					Return(&model.User{ID: managerID, Role: authz.RoleManager, CompanyID: 1}, nil).Once()
				m.On("AssignRole", mock.Anything, uint(30), authz.RoleEmployee, uint(1), &managerID, mock.AnythingOfType("time.Time")).
					Return(int64(1), nil)
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RoleEmployee, CompanyID: 1, ManagerID: &managerID}, nil).Once()
			},
		},
		{
			name:     "admin assignment drops manager binding",
			actor:    adminUser(),
			targetID: 30,
			role:     authz.RoleAdmin,
			// managerID is supplied but must be ignored for Admin assignments
			managerID: &managerID,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil).Once()
				m.On("AssignRole", mock.Anything, uint(30), authz.RoleAdmin, uint(1), (*uint)(nil), mock.AnythingOfType("time.Time")).
					Return(int64(1), nil)
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RoleAdmin, CompanyID: 1}, nil).Once()
			},
		},
		{
			name:          "manager may not assign roles",
			actor:         &model.User{ID: managerID, Role: authz.RoleManager, CompanyID: 1},
			targetID:      30,
			role:          authz.RoleEmployee,
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "pending is not assignable",
			actor:         adminUser(),
			targetID:      30,
			role:          authz.RolePending,
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:     "target already has a role",
			actor:    adminUser(),
			targetID: 30,
			role:     authz.RoleEmployee,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RoleEmployee, CompanyID: 1}, nil)
			},
			expectedError: apperrors.ErrRoleAlreadyAssigned,
		},
		{
			name:     "target in another company looks like not found",
			actor:    adminUser(),
			targetID: 30,
			role:     authz.RoleEmployee,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 2}, nil)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "unknown target",
			actor:    adminUser(),
			targetID: 99,
			role:     authz.RoleEmployee,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:      "manager must be an approver",
			actor:     adminUser(),
			targetID:  30,
			role:      authz.RoleEmployee,
			managerID: &managerID,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil)
				m.On("FindByID", mock.Anything, managerID).
					Return(&model.User{ID: managerID, Role: authz.RoleEmployee, CompanyID: 1}, nil)
			},
			expectedError: apperrors.ErrInvalidManager,
		},
		{
			name:      "manager from another company rejected",
			actor:     adminUser(),
			targetID:  30,
			role:      authz.RoleEmployee,
			managerID: &managerID,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil)
				m.On("FindByID", mock.Anything, managerID).
					Return(&model.User{ID: managerID, Role: authz.RoleManager, CompanyID: 2}, nil)
			},
			expectedError: apperrors.ErrInvalidManager,
		},
		{
			name:     "user cannot manage themselves",
			actor:    adminUser(),
			targetID: 30,
			role:     authz.RoleEmployee,
			managerID: func() *uint {
				id := uint(30)
				return &id
			}(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil)
			},
			expectedError: apperrors.ErrInvalidManager,
		},
		{
			name:     "concurrent assignment loses the race",
			actor:    adminUser(),
			targetID: 30,
			role:     authz.RoleEmployee,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(30)).
					Return(&model.User{ID: 30, Role: authz.RolePending, CompanyID: 1}, nil)
				m.On("AssignRole", mock.Anything, uint(30), authz.RoleEmployee, uint(1), (*uint)(nil), mock.AnythingOfType("time.Time")).
					Return(int64(0), nil)
			},
			expectedError: apperrors.ErrRoleAlreadyAssigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, zap.NewNop())

			updated, err := service.AssignRole(context.Background(), tt.actor, tt.targetID, tt.role, tt.managerID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, updated)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, updated)
				assert.Equal(t, tt.role, updated.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_ListPendingUsers(t *testing.T) {
	t.Run("admin lists company's pending users", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("ListPendingByCompany", mock.Anything, uint(1)).
			Return([]model.User{{ID: 30, Role: authz.RolePending}}, nil)

		service := NewUserService(mockRepo, zap.NewNop())

		users, err := service.ListPendingUsers(context.Background(), adminUser())
		assert.NoError(t, err)
		assert.Len(t, users, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("manager is denied", func(t *testing.T) {
		service := NewUserService(new(MockUserRepository), zap.NewNop())

		_, err := service.ListPendingUsers(context.Background(), &model.User{ID: 10, Role: authz.RoleManager, CompanyID: 1})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	tests := []struct {
		name          string
		actor         *model.User
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "admin gets whole company",
			actor: adminUser(),
			setupMock: func(m *MockUserRepository) {
				m.On("ListByCompany", mock.Anything, uint(1)).Return([]model.User{{ID: 1}, {ID: 10}, {ID: 20}}, nil)
			},
		},
		{
			name:  "manager gets own team",
			actor: &model.User{ID: 10, Role: authz.RoleManager, CompanyID: 1},
			setupMock: func(m *MockUserRepository) {
				m.On("ListTeam", mock.Anything, uint(10)).Return([]model.User{{ID: 10}, {ID: 20}}, nil)
			},
		},
		{
			name:          "employee is denied",
			actor:         &model.User{ID: 20, Role: authz.RoleEmployee, CompanyID: 1},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, zap.NewNop())

			_, err := service.ListUsers(context.Background(), tt.actor)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("successful update", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("EmailTakenByOther", mock.Anything, "new@example.com", uint(20)).Return(false, nil)
		mockRepo.On("UpdateProfile", mock.Anything, uint(20), "New Name", "new@example.com").Return(nil)
		mockRepo.On("FindByID", mock.Anything, uint(20)).
			Return(&model.User{ID: 20, Name: "New Name", Email: "new@example.com"}, nil)

		service := NewUserService(mockRepo, zap.NewNop())

		updated, err := service.UpdateProfile(context.Background(),
			&model.User{ID: 20, Role: authz.RoleEmployee, CompanyID: 1}, "New Name", "new@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("EmailTakenByOther", mock.Anything, "taken@example.com", uint(20)).Return(true, nil)

		service := NewUserService(mockRepo, zap.NewNop())

		_, err := service.UpdateProfile(context.Background(),
			&model.User{ID: 20, Role: authz.RoleEmployee, CompanyID: 1}, "Name", "taken@example.com")
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_ListManagers(t *testing.T) {
	t.Run("admin lists managers and admins", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("ListManagersByCompany", mock.Anything, uint(1)).
			Return([]model.User{{ID: 1, Role: authz.RoleAdmin}, {ID: 10, Role: authz.RoleManager}}, nil)

		service := NewUserService(mockRepo, zap.NewNop())

		users, err := service.ListManagers(context.Background(), adminUser())
		assert.NoError(t, err)
		assert.Len(t, users, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("employee is denied", func(t *testing.T) {
		service := NewUserService(new(MockUserRepository), zap.NewNop())

		_, err := service.ListManagers(context.Background(), &model.User{ID: 20, Role: authz.RoleEmployee, CompanyID: 1})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
