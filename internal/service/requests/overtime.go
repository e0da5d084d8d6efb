package requests

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
)

// ClockLayout is the stored form of overtime start and end times.
const ClockLayout = "15:04:05"

// OvertimeInput is an overtime submission. Times are wall clock, HH:MM or HH:MM:SS.
type OvertimeInput struct {
	Date      models.Date
	StartTime string
	EndTime   string
	Reason    string
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("%w: time %q must be HH:MM or HH:MM:SS", ErrValidation, s)
}

func formatClock(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(ClockLayout)
}

// OvertimeHours returns the worked hours between start and end rounded to two
// decimals. An end not after start is taken to be on the following day, so
// equal times mean a full 24 hours.
func OvertimeHours(start, end time.Duration) (float64, error) {
	span := end - start
	if span <= 0 {
		span += 24 * time.Hour
	}
	if span <= 0 {
		return 0, ErrInvalidDuration
	}
	return math.Round(span.Hours()*100) / 100, nil
}

// SubmitOvertime records a new PENDING overtime request for ownerID.
func (s *Service) SubmitOvertime(ctx context.Context, ownerID uint, in OvertimeInput) (*models.OvertimeRequest, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		s.invalid(models.KindOvertime, "validation")
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if in.Date.IsZero() {
		s.invalid(models.KindOvertime, "validation")
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	start, err := ParseClock(in.StartTime)
	if err != nil {
		s.invalid(models.KindOvertime, "validation")
		return nil, err
	}
	end, err := ParseClock(in.EndTime)
	if err != nil {
		s.invalid(models.KindOvertime, "validation")
		return nil, err
	}

	hours, err := OvertimeHours(start, end)
	if err != nil {
		s.invalid(models.KindOvertime, "invalid_duration")
		return nil, fmt.Errorf("%w: %s to %s", err, in.StartTime, in.EndTime)
	}

	req := &models.OvertimeRequest{
		UserID:     ownerID,
		Date:       in.Date,
		StartTime:  formatClock(start),
		EndTime:    formatClock(end),
		TotalHours: hours,
		Status:     models.StatusPending,
		Reason:     reason,
	}
	if err := s.overtime.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to submit overtime: %w", err)
	}

	metrics.RecordRequestSubmitted(string(models.KindOvertime))
	metrics.ObserveOvertimeHours(hours)
	s.log.Info().
		Uint("request_id", req.ID).
		Uint("user_id", ownerID).
		Float64("total_hours", hours).
		Msg("Overtime request submitted")

	s.afterWrite(ctx, Event{
		Kind:      models.KindOvertime,
		RequestID: req.ID,
		OwnerID:   ownerID,
		ActorID:   ownerID,
		Status:    req.Status,
		Summary:   overtimeSummary(req),
	}, false)

	return req, nil
}

// ListOvertime returns every request for admins and the actor's own otherwise, newest first.
func (s *Service) ListOvertime(ctx context.Context, actor Actor, page Page) ([]models.OvertimeRequest, error) {
	window, err := s.window(page)
	if err != nil {
		return nil, err
	}
	reqs, err := s.overtime.List(ctx, listScope(actor), window)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime: %w", err)
	}
	return reqs, nil
}

// PendingOvertimeApprovals returns the overtime requests awaiting the actor's
// decision, oldest first. Employees have no queue.
func (s *Service) PendingOvertimeApprovals(ctx context.Context, actor Actor, page Page) ([]models.OvertimeRequest, error) {
	managerID, ok := pendingScope(actor)
	if !ok {
		return []models.OvertimeRequest{}, nil
	}
	window, err := s.window(page)
	if err != nil {
		return nil, err
	}
	reqs, err := s.overtime.ListPending(ctx, managerID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending overtime: %w", err)
	}
	return reqs, nil
}

// DecideOvertime records the actor's decision on an overtime request.
// CANCELLED is not an outcome for overtime.
func (s *Service) DecideOvertime(ctx context.Context, actor Actor, id uint, d Decision) (*models.OvertimeRequest, error) {
	if err := checkDecision(models.KindOvertime, d); err != nil {
		s.denied(models.KindOvertime, "invalid_status")
		return nil, err
	}

	req, err := s.overtime.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("overtime request %d", id))
	}
	if err := s.authorize(actor, models.KindOvertime, req.User, req.Status); err != nil {
		s.log.Warn().
			Uint("request_id", id).
			Uint("actor_id", actor.ID).
			Str("role", string(actor.Role)).
			Err(err).
			Msg("Overtime decision refused")
		return nil, err
	}

	if err := s.overtime.UpdateDecision(ctx, id, repository.Decision{
		Status:     d.Status,
		Comment:    d.Comment,
		ApproverID: actor.ID,
	}); err != nil {
		return nil, storageErr(err, fmt.Sprintf("overtime request %d", id))
	}

	previous := req.Status
	approverID := actor.ID
	req.Status = d.Status
	req.ManagerComment = d.Comment
	req.ApproverID = &approverID

	metrics.RecordDecision(string(models.KindOvertime), string(d.Status), string(actor.Role))
	s.log.Info().
		Uint("request_id", id).
		Uint("approver_id", actor.ID).
		Str("from", string(previous)).
		Str("to", string(d.Status)).
		Msg("Overtime request decided")

	s.afterWrite(ctx, Event{
		Kind:      models.KindOvertime,
		RequestID: req.ID,
		OwnerID:   req.UserID,
		Owner:     req.User,
		ActorID:   actor.ID,
		Status:    req.Status,
		Summary:   overtimeSummary(req),
		Comment:   deref(d.Comment),
	}, true)

	return req, nil
}

func overtimeSummary(req *models.OvertimeRequest) string {
	return fmt.Sprintf("Overtime on %s, %s to %s (%gh)", req.Date, req.StartTime, req.EndTime, req.TotalHours)
}
