//nolint:noctx // Test file uses http.NewRequest for simplicity
package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
	"github.com/dexhub/hr-portal/test/testdb"
)

type fixture struct {
	router  *gin.Engine
	tokens  *auth.TokenManager
	admin   *models.User
	manager *models.User
	alice   *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.New(t)
	repo := repository.NewUserRepository(db)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	svc := users.NewService(repo, hasher, logger.NewNop())
	tokens := auth.NewTokenManager("0123456789abcdef0123", time.Hour, "hr-portal")

	f := &fixture{tokens: tokens}
	f.admin = testdb.User(t, db, "admin", models.RoleAdmin, nil)
	f.manager = testdb.User(t, db, "maya", models.RoleManager, nil)
	f.alice = testdb.User(t, db, "alice", models.RoleEmployee, &f.manager.ID)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	f.alice.PasswordHash = hash
	require.NoError(t, repo.Update(t.Context(), f.alice))

	h := NewHandler(svc, tokens, logger.NewNop())
	mw := auth.NewMiddleware(tokens, repo, logger.NewNop())

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/login/access-token", h.Login)

	authed := api.Group("", mw.Authenticate())
	authed.GET("/users/me", h.Me)
	approvers := authed.Group("", auth.RequireRole(models.RoleManager, models.RoleAdmin))
	approvers.GET("/users", h.List)
	approvers.GET("/users/team", h.Team)
	approvers.POST("/users", h.Create)
	approvers.PUT("/users/:id", h.Update)
	authed.DELETE("/users/:id", auth.RequireRole(models.RoleAdmin), h.Delete)

	f.router = router
	return f
}

func (f *fixture) do(t *testing.T, method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := f.tokens.GenerateToken(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestLogin_FormAndJSON(t *testing.T) {
	f := setup(t)

	form := url.Values{"username": {"ALICE@example.com"}, "password": {"secret123"}}
	req, _ := http.NewRequest("POST", "/api/v1/login/access-token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)

	claims, err := f.tokens.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, id)

	w = f.do(t, "POST", "/api/v1/login/access-token", nil, gin.H{"email": "alice@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "POST", "/api/v1/login/access-token", nil, gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "incorrect email or password")
}

func TestMe(t *testing.T) {
	f := setup(t)

	w := f.do(t, "GET", "/api/v1/users/me", f.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "GET", "/api/v1/users/me", nil, nil).Code)
}

func TestListAndTeam_RoleGated(t *testing.T) {
	f := setup(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, "GET", "/api/v1/users", f.alice, nil).Code)

	w := f.do(t, "GET", "/api/v1/users?limit=2", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = f.do(t, "GET", "/api/v1/users/team", f.manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, f.alice.ID, list[0].ID)
}

func TestCreate(t *testing.T) {
	f := setup(t)

	body := gin.H{"email": "new@example.com", "password": "secret123", "full_name": "New Hire", "manager_id": f.manager.ID}
	w := f.do(t, "POST", "/api/v1/users", f.manager, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, "POST", "/api/v1/users", f.manager, body)
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate email")

	admin := gin.H{"email": "boss@example.com", "password": "secret123", "full_name": "Boss", "role": "ADMIN"}
	assert.Equal(t, http.StatusForbidden, f.do(t, "POST", "/api/v1/users", f.manager, admin).Code)
	assert.Equal(t, http.StatusOK, f.do(t, "POST", "/api/v1/users", f.admin, admin).Code)
}

func TestUpdate(t *testing.T) {
	f := setup(t)

	w := f.do(t, "PUT", "/api/v1/users/999", f.admin, gin.H{"full_name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "PUT", "/api/v1/users/"+itoa(f.manager.ID), f.admin, gin.H{"manager_id": f.alice.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "manager cycle")

	w = f.do(t, "PUT", "/api/v1/users/"+itoa(f.alice.ID), f.manager, gin.H{"designation": "Engineer"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Engineer", updated.Designation)
	assert.Equal(t, "alice", updated.FullName)
}

func TestUpdate_ManagerNullDetaches(t *testing.T) {
	f := setup(t)
	path := "/api/v1/users/" + itoa(f.alice.ID)

	w := f.do(t, "PUT", path, f.admin, gin.H{"designation": "Engineer"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.ManagerID, "absent manager_id leaves the manager alone")
	assert.Equal(t, f.manager.ID, *updated.ManagerID)

	w = f.do(t, "PUT", path, f.admin, gin.H{"manager_id": nil})
	require.Equal(t, http.StatusOK, w.Code)
	updated = models.User{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(t, updated.ManagerID)

	w = f.do(t, "GET", "/api/v1/users/team", f.manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var team []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &team))
	assert.Empty(t, team)

	w = f.do(t, "PUT", path, f.admin, gin.H{"manager_id": "maya"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	f := setup(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, "DELETE", "/api/v1/users/"+itoa(f.alice.ID), f.manager, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "DELETE", "/api/v1/users/"+itoa(f.admin.ID), f.admin, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, "DELETE", "/api/v1/users/"+itoa(f.alice.ID), f.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "DELETE", "/api/v1/users/"+itoa(f.alice.ID), f.admin, nil).Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
