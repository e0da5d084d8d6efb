// Package response holds the JSON error envelope and request parsing helpers shared
// by the API handlers.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/service/catalog"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// Error writes the standard error body.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, requests.ErrValidation),
		errors.Is(err, requests.ErrInvalidRange),
		errors.Is(err, requests.ErrInvalidDuration),
		errors.Is(err, requests.ErrInvalidStatus),
		errors.Is(err, users.ErrSelfDelete),
		errors.Is(err, users.ErrManagerCycle),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, users.ErrInactive):
		return http.StatusBadRequest
	case errors.Is(err, requests.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, requests.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, requests.ErrAlreadyDecided),
		errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FromError writes err with its mapped status. Internal errors are logged and
// replaced by fallback so storage details never reach the client.
func FromError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg(fallback)
		Error(c, status, fallback)
		return
	}
	Error(c, status, err.Error())
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return uint(id), nil
}

// ParsePage reads skip and limit query parameters. Range checks are left to the services.
func ParsePage(c *gin.Context) (requests.Page, error) {
	var page requests.Page
	var err error

	if raw := c.Query("skip"); raw != "" {
		if page.Skip, err = strconv.Atoi(raw); err != nil {
			return page, fmt.Errorf("invalid skip parameter: %s", raw)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil {
			return page, fmt.Errorf("invalid limit parameter: %s", raw)
		}
	}
	return page, nil
}

// CurrentActor returns the authenticated user and its actor view. It writes a 401
// and returns false when the middleware did not run.
func CurrentActor(c *gin.Context) (*models.User, requests.Actor, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "Not authenticated")
		return nil, requests.Actor{}, false
	}
	return user, requests.ActorFromUser(user), true
}
