// Package overtime provides REST API handlers for overtime requests.
package overtime

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexhub/hr-portal/internal/api/response"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// RequestService interface for the overtime lifecycle.
type RequestService interface {
	SubmitOvertime(ctx context.Context, ownerID uint, in requests.OvertimeInput) (*models.OvertimeRequest, error)
	ListOvertime(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.OvertimeRequest, error)
	PendingOvertimeApprovals(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.OvertimeRequest, error)
	DecideOvertime(ctx context.Context, actor requests.Actor, id uint, d requests.Decision) (*models.OvertimeRequest, error)
}

// Handler handles overtime API requests.
type Handler struct {
	requests RequestService
	log      *logger.Logger
}

// NewHandler creates a new overtime handler.
func NewHandler(reqs *requests.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(reqs, log)
}

// NewHandlerWithInterfaces creates a new overtime handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(reqs RequestService, log *logger.Logger) *Handler {
	return &Handler{requests: reqs, log: log.Component("api.overtime")}
}

// OvertimeResponse is an overtime request with its owner inlined.
type OvertimeResponse struct {
	models.OvertimeRequest
	User *models.UserMini `json:"user"`
}

func toResponses(reqs []models.OvertimeRequest) []OvertimeResponse {
	out := make([]OvertimeResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, OvertimeResponse{OvertimeRequest: reqs[i], User: reqs[i].User.Mini()})
	}
	return out
}

type submitRequest struct {
	Date      models.Date `json:"ot_date"`
	StartTime string      `json:"start_time" binding:"required"`
	EndTime   string      `json:"end_time" binding:"required"`
	Reason    string      `json:"reason"`
}

type decideRequest struct {
	Status         models.RequestStatus `json:"status" binding:"required"`
	ManagerComment *string              `json:"manager_comment"`
}

// Submit records an overtime request for the caller.
// POST /api/v1/ot.
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

	ot, err := h.requests.SubmitOvertime(c.Request.Context(), user.ID, requests.OvertimeInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to submit overtime request")
		return
	}

	c.JSON(http.StatusOK, OvertimeResponse{OvertimeRequest: *ot, User: user.Mini()})
}

// List returns the caller's overtime requests, or all of them for admins.
// GET /api/v1/ot?skip=0&limit=100.
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

	list, err := h.requests.ListOvertime(c.Request.Context(), actor, page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list overtime requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// Approvals returns the overtime requests awaiting the caller's decision.
// GET /api/v1/ot/approvals.
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

	list, err := h.requests.PendingOvertimeApprovals(c.Request.Context(), actor, page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list pending overtime requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// Decide records an approver decision.
// PUT /api/v1/ot/:id.
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

	ot, err := h.requests.DecideOvertime(c.Request.Context(), actor, id, requests.Decision{
		Status:  req.Status,
		Comment: req.ManagerComment,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to update overtime request")
		return
	}
	c.JSON(http.StatusOK, OvertimeResponse{OvertimeRequest: *ot, User: ot.User.Mini()})
}
