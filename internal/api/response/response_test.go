//nolint:noctx // Test file uses http.NewRequest for simplicity
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhub/hr-portal/internal/service/catalog"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", requests.ErrInvalidRange), http.StatusBadRequest},
		{requests.ErrInvalidDuration, http.StatusBadRequest},
		{requests.ErrInvalidStatus, http.StatusBadRequest},
		{requests.ErrValidation, http.StatusBadRequest},
		{users.ErrSelfDelete, http.StatusBadRequest},
		{users.ErrManagerCycle, http.StatusBadRequest},
		{users.ErrEmailTaken, http.StatusBadRequest},
		{requests.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("leave request 4: %w", requests.ErrNotFound), http.StatusNotFound},
		{requests.ErrAlreadyDecided, http.StatusConflict},
		{catalog.ErrConflict, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestFromError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		FromError(c, logger.NewNop(), errors.New("pq: password authentication failed"), "Failed to load")
	})

	req, _ := http.NewRequest("GET", "/boom", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to load", body["error"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestParsePageAndID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, err := ParseID(c, "id")
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error())
			return
		}
		page, err := ParsePage(c)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "skip": page.Skip, "limit": page.Limit})
	})

	tests := []struct {
		url  string
		code int
	}{
		{"/items/3?skip=10&limit=5", http.StatusOK},
		{"/items/3", http.StatusOK},
		{"/items/0", http.StatusBadRequest},
		{"/items/abc", http.StatusBadRequest},
		{"/items/3?limit=many", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest("GET", tt.url, http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tt.code, w.Code, tt.url)
	}
}
