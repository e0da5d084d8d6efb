package mocks

import (
	"context"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
)

// MockLeaveRepository is a simple mock for the leave repository
type MockLeaveRepository struct {
	CreateFunc         func(ctx context.Context, req *models.LeaveRequest) error
	GetByIDFunc        func(ctx context.Context, id uint) (*models.LeaveRequest, error)
	ListFunc           func(ctx context.Context, ownerID *uint, page repository.Page) ([]models.LeaveRequest, error)
	ListPendingFunc    func(ctx context.Context, managerID *uint, page repository.Page) ([]models.LeaveRequest, error)
	UpdateDecisionFunc func(ctx context.Context, id uint, d repository.Decision) error
}

func (m *MockLeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *MockLeaveRepository) GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockLeaveRepository) List(ctx context.Context, ownerID *uint, page repository.Page) ([]models.LeaveRequest, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, page)
	}
	return []models.LeaveRequest{}, nil
}

func (m *MockLeaveRepository) ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.LeaveRequest, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, managerID, page)
	}
	return []models.LeaveRequest{}, nil
}

func (m *MockLeaveRepository) UpdateDecision(ctx context.Context, id uint, d repository.Decision) error {
	if m.UpdateDecisionFunc != nil {
		return m.UpdateDecisionFunc(ctx, id, d)
	}
	return nil
}

// MockOvertimeRepository is a simple mock for the overtime repository
type MockOvertimeRepository struct {
	CreateFunc         func(ctx context.Context, req *models.OvertimeRequest) error
	GetByIDFunc        func(ctx context.Context, id uint) (*models.OvertimeRequest, error)
	ListFunc           func(ctx context.Context, ownerID *uint, page repository.Page) ([]models.OvertimeRequest, error)
	ListPendingFunc    func(ctx context.Context, managerID *uint, page repository.Page) ([]models.OvertimeRequest, error)
	UpdateDecisionFunc func(ctx context.Context, id uint, d repository.Decision) error
	CountPendingFunc   func(ctx context.Context, managerID *uint) (int64, error)
}

func (m *MockOvertimeRepository) Create(ctx context.Context, req *models.OvertimeRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *MockOvertimeRepository) GetByID(ctx context.Context, id uint) (*models.OvertimeRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockOvertimeRepository) List(ctx context.Context, ownerID *uint, page repository.Page) ([]models.OvertimeRequest, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, page)
	}
	return []models.OvertimeRequest{}, nil
}

func (m *MockOvertimeRepository) ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.OvertimeRequest, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, managerID, page)
	}
	return []models.OvertimeRequest{}, nil
}

func (m *MockOvertimeRepository) UpdateDecision(ctx context.Context, id uint, d repository.Decision) error {
	if m.UpdateDecisionFunc != nil {
		return m.UpdateDecisionFunc(ctx, id, d)
	}
	return nil
}

func (m *MockOvertimeRepository) CountPending(ctx context.Context, managerID *uint) (int64, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx, managerID)
	}
	return 0, nil
}

// MockLeaveTypeRepository is a simple mock for leave type lookups
type MockLeaveTypeRepository struct {
	Types map[uint]*models.LeaveType
}

func (m *MockLeaveTypeRepository) GetLeaveType(ctx context.Context, id uint) (*models.LeaveType, error) {
	if lt, ok := m.Types[id]; ok {
		return lt, nil
	}
	return nil, repository.ErrNotFound
}
