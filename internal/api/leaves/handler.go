// Package leaves provides REST API handlers for leave requests, leave types and holidays.
package leaves

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexhub/hr-portal/internal/api/response"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/service/catalog"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// RequestService interface for the leave lifecycle.
type RequestService interface {
	SubmitLeave(ctx context.Context, ownerID uint, in requests.LeaveInput) (*models.LeaveRequest, error)
	ListLeaves(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.LeaveRequest, error)
	PendingLeaveApprovals(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.LeaveRequest, error)
	DecideLeave(ctx context.Context, actor requests.Actor, id uint, d requests.Decision) (*models.LeaveRequest, error)
}

// CatalogService interface for leave types and holidays.
type CatalogService interface {
	ListLeaveTypes(ctx context.Context) ([]models.LeaveType, error)
	CreateLeaveType(ctx context.Context, in catalog.LeaveTypeInput) (*models.LeaveType, error)
	UpdateLeaveType(ctx context.Context, id uint, in catalog.LeaveTypeInput) (*models.LeaveType, error)
	DeleteLeaveType(ctx context.Context, id uint) (*models.LeaveType, error)
	ListHolidays(ctx context.Context) ([]models.Holiday, error)
	CreateHoliday(ctx context.Context, in catalog.HolidayInput) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, id uint) error
}

// Handler handles leave API requests.
type Handler struct {
	requests RequestService
	catalog  CatalogService
	log      *logger.Logger
}

// NewHandler creates a new leaves handler.
func NewHandler(reqs *requests.Service, cat *catalog.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(reqs, cat, log)
}

// NewHandlerWithInterfaces creates a new leaves handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(reqs RequestService, cat CatalogService, log *logger.Logger) *Handler {
	return &Handler{
		requests: reqs,
		catalog:  cat,
		log:      log.Component("api.leaves"),
	}
}

// LeaveResponse is a leave request with its owner and type inlined.
type LeaveResponse struct {
	models.LeaveRequest
	User      *models.UserMini  `json:"user"`
	LeaveType *models.LeaveType `json:"leave_type"`
}

func toResponse(req *models.LeaveRequest) LeaveResponse {
	return LeaveResponse{LeaveRequest: *req, User: req.User.Mini(), LeaveType: req.LeaveType}
}

func toResponses(reqs []models.LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toResponse(&reqs[i]))
	}
	return out
}

type submitRequest struct {
	LeaveTypeID uint        `json:"leave_type_id" binding:"required"`
	StartDate   models.Date `json:"start_date"`
	EndDate     models.Date `json:"end_date"`
	Reason      string      `json:"reason"`
}

type decideRequest struct {
	Status         models.RequestStatus `json:"status" binding:"required"`
	ManagerComment *string              `json:"manager_comment"`
}

type leaveTypeRequest struct {
	Name               string `json:"name" binding:"required"`
	DefaultDaysPerYear int    `json:"default_days_per_year"`
	CarryForward       bool   `json:"carry_forward"`
	ColorHex           string `json:"color_hex"`
}

type holidayRequest struct {
	Date        models.Date        `json:"date"`
	Name        string             `json:"name" binding:"required"`
	Type        models.HolidayType `json:"type"`
	IsRecurring *bool              `json:"is_recurring"`
}

// Submit records a leave request for the caller.
// POST /api/v1/leaves.
func (h *Handler) Submit(c *gin.Context) {
	user, _, ok := response.CurrentActor(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	leave, err := h.requests.SubmitLeave(c.Request.Context(), user.ID, requests.LeaveInput{
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to submit leave request")
		return
	}

	leave.User = user
	c.JSON(http.StatusOK, toResponse(leave))
}

// List returns the caller's leave requests, or all of them for admins.
// GET /api/v1/leaves?skip=0&limit=100.
func (h *Handler) List(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.requests.ListLeaves(c.Request.Context(), actor, page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list leave requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// Approvals returns the leave requests awaiting the caller's decision.
// GET /api/v1/leaves/approvals.
func (h *Handler) Approvals(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.requests.PendingLeaveApprovals(c.Request.Context(), actor, page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list pending leave requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// Decide records an approver decision.
// PUT /api/v1/leaves/:id.
func (h *Handler) Decide(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	leave, err := h.requests.DecideLeave(c.Request.Context(), actor, id, requests.Decision{
		Status:  req.Status,
		Comment: req.ManagerComment,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to update leave request")
		return
	}
	c.JSON(http.StatusOK, toResponse(leave))
}

// ListTypes returns every leave type.
// GET /api/v1/leaves/types.
func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.catalog.ListLeaveTypes(c.Request.Context())
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list leave types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// CreateType adds a leave type.
// POST /api/v1/leaves/types.
func (h *Handler) CreateType(c *gin.Context) {
	var req leaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	lt, err := h.catalog.CreateLeaveType(c.Request.Context(), catalog.LeaveTypeInput(req))
	if err != nil {
		response.FromError(c, h.log, err, "Failed to create leave type")
		return
	}
	c.JSON(http.StatusOK, lt)
}

// UpdateType replaces a leave type.
// PUT /api/v1/leaves/types/:id.
func (h *Handler) UpdateType(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var req leaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	lt, err := h.catalog.UpdateLeaveType(c.Request.Context(), id, catalog.LeaveTypeInput(req))
	if err != nil {
		response.FromError(c, h.log, err, "Failed to update leave type")
		return
	}
	c.JSON(http.StatusOK, lt)
}

// DeleteType removes a leave type and its requests.
// DELETE /api/v1/leaves/types/:id.
func (h *Handler) DeleteType(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	lt, err := h.catalog.DeleteLeaveType(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to delete leave type")
		return
	}
	c.JSON(http.StatusOK, lt)
}

// ListHolidays returns the holiday calendar.
// GET /api/v1/leaves/holidays.
func (h *Handler) ListHolidays(c *gin.Context) {
	holidays, err := h.catalog.ListHolidays(c.Request.Context())
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list holidays")
		return
	}
	c.JSON(http.StatusOK, holidays)
}

// CreateHoliday adds a holiday. is_recurring defaults to true.
// POST /api/v1/leaves/holidays.
func (h *Handler) CreateHoliday(c *gin.Context) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	recurring := true
	if req.IsRecurring != nil {
		recurring = *req.IsRecurring
	}

	holiday, err := h.catalog.CreateHoliday(c.Request.Context(), catalog.HolidayInput{
		Date:        req.Date,
		Name:        req.Name,
		Type:        req.Type,
		IsRecurring: recurring,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to create holiday")
		return
	}
	c.JSON(http.StatusOK, holiday)
}

// DeleteHoliday removes a holiday.
// DELETE /api/v1/leaves/holidays/:id.
func (h *Handler) DeleteHoliday(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.DeleteHoliday(c.Request.Context(), id); err != nil {
		response.FromError(c, h.log, err, "Failed to delete holiday")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
