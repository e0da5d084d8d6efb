package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
)

// LeaveInput is a leave submission.
type LeaveInput struct {
	LeaveTypeID uint
	StartDate   models.Date
	EndDate     models.Date
	Reason      string
}

// LeaveDays returns the inclusive number of days between start and end.
// The result is zero or negative when end is before start.
func LeaveDays(start, end models.Date) int {
	return start.DaysUntil(end) + 1
}

// SubmitLeave records a new PENDING leave request for ownerID. No allotment or
// holiday checks are made.
func (s *Service) SubmitLeave(ctx context.Context, ownerID uint, in LeaveInput) (*models.LeaveRequest, error) {
	if in.LeaveTypeID == 0 || in.StartDate.IsZero() || in.EndDate.IsZero() {
		s.invalid(models.KindLeave, "validation")
		return nil, fmt.Errorf("%w: leave type, start date and end date are required", ErrValidation)
	}

	days := LeaveDays(in.StartDate, in.EndDate)
	if days <= 0 {
		s.invalid(models.KindLeave, "invalid_range")
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidRange, in.StartDate, in.EndDate)
	}

	leaveType, err := s.leaveTypes.GetLeaveType(ctx, in.LeaveTypeID)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("leave type %d", in.LeaveTypeID))
	}

	req := &models.LeaveRequest{
		UserID:      ownerID,
		LeaveTypeID: leaveType.ID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TotalDays:   float64(days),
		Status:      models.StatusPending,
		Reason:      strings.TrimSpace(in.Reason),
	}
	if err := s.leaves.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to submit leave: %w", err)
	}
	req.LeaveType = leaveType

	metrics.RecordRequestSubmitted(string(models.KindLeave))
	metrics.ObserveLeaveDays(req.TotalDays)
	s.log.Info().
		Uint("request_id", req.ID).
		Uint("user_id", ownerID).
		Str("leave_type", leaveType.Name).
		Float64("total_days", req.TotalDays).
		Msg("Leave request submitted")

	s.afterWrite(ctx, Event{
		Kind:      models.KindLeave,
		RequestID: req.ID,
		OwnerID:   ownerID,
		ActorID:   ownerID,
		Status:    req.Status,
		Summary:   leaveSummary(req, leaveType),
	}, false)

	return req, nil
}

// ListLeaves returns every request for admins and the actor's own otherwise, newest first.
func (s *Service) ListLeaves(ctx context.Context, actor Actor, page Page) ([]models.LeaveRequest, error) {
	window, err := s.window(page)
	if err != nil {
		return nil, err
	}
	reqs, err := s.leaves.List(ctx, listScope(actor), window)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	return reqs, nil
}

// PendingLeaveApprovals returns the leave requests awaiting the actor's decision,
// oldest first. Employees have no queue.
func (s *Service) PendingLeaveApprovals(ctx context.Context, actor Actor, page Page) ([]models.LeaveRequest, error) {
	managerID, ok := pendingScope(actor)
	if !ok {
		return []models.LeaveRequest{}, nil
	}
	window, err := s.window(page)
	if err != nil {
		return nil, err
	}
	reqs, err := s.leaves.ListPending(ctx, managerID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending leaves: %w", err)
	}
	return reqs, nil
}

// DecideLeave records the actor's decision on a leave request. Status, comment
// and approver are written together.
func (s *Service) DecideLeave(ctx context.Context, actor Actor, id uint, d Decision) (*models.LeaveRequest, error) {
	if err := checkDecision(models.KindLeave, d); err != nil {
		s.denied(models.KindLeave, "invalid_status")
		return nil, err
	}

	req, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("leave request %d", id))
	}
	if err := s.authorize(actor, models.KindLeave, req.User, req.Status); err != nil {
		s.log.Warn().
			Uint("request_id", id).
			Uint("actor_id", actor.ID).
			Str("role", string(actor.Role)).
			Err(err).
			Msg("Leave decision refused")
		return nil, err
	}

	if err := s.leaves.UpdateDecision(ctx, id, repository.Decision{
		Status:     d.Status,
		Comment:    d.Comment,
		ApproverID: actor.ID,
	}); err != nil {
		return nil, storageErr(err, fmt.Sprintf("leave request %d", id))
	}

	previous := req.Status
	approverID := actor.ID
	req.Status = d.Status
	req.ManagerComment = d.Comment
	req.ApproverID = &approverID

	metrics.RecordDecision(string(models.KindLeave), string(d.Status), string(actor.Role))
	s.log.Info().
		Uint("request_id", id).
		Uint("approver_id", actor.ID).
		Str("from", string(previous)).
		Str("to", string(d.Status)).
		Msg("Leave request decided")

	s.afterWrite(ctx, Event{
		Kind:      models.KindLeave,
		RequestID: req.ID,
		OwnerID:   req.UserID,
		Owner:     req.User,
		ActorID:   actor.ID,
		Status:    req.Status,
		Summary:   leaveSummary(req, req.LeaveType),
		Comment:   deref(d.Comment),
	}, true)

	return req, nil
}

func leaveSummary(req *models.LeaveRequest, lt *models.LeaveType) string {
	name := "Leave"
	if lt != nil {
		name = lt.Name
	}
	return fmt.Sprintf("%s: %s to %s (%g days)", name, req.StartDate, req.EndDate, req.TotalDays)
}

func (s *Service) invalid(kind models.RequestKind, reason string) {
	metrics.RecordInvalidRequest(string(kind), reason)
}

func (s *Service) denied(kind models.RequestKind, reason string) {
	metrics.RecordDecisionDenied(string(kind), reason)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
