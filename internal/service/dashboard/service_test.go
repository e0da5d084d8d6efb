package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
	"github.com/dexhub/hr-portal/test/mocks"
	"github.com/dexhub/hr-portal/test/testdb"
)

type world struct {
	db    *repository.DB
	admin *models.User
	m1    *models.User
	m2    *models.User
}

func seedWorld(t *testing.T) *world {
	t.Helper()
	db := testdb.New(t)
	w := &world{db: db}
	w.admin = testdb.User(t, db, "admin", models.RoleAdmin, nil)
	w.m1 = testdb.User(t, db, "m1", models.RoleManager, nil)
	w.m2 = testdb.User(t, db, "m2", models.RoleManager, nil)
	a := testdb.User(t, db, "a", models.RoleEmployee, &w.m1.ID)
	b := testdb.User(t, db, "b", models.RoleEmployee, &w.m1.ID)
	c := testdb.User(t, db, "c", models.RoleEmployee, &w.m2.ID)
	lt := testdb.LeaveType(t, db, "Annual Leave")

	leave := func(u *models.User, status models.RequestStatus, start, end string) {
		require.NoError(t, db.Create(&models.LeaveRequest{
			UserID: u.ID, LeaveTypeID: lt.ID, Status: status, TotalDays: 1,
			StartDate: models.MustDate(start), EndDate: models.MustDate(end),
		}).Error)
	}
	ot := func(u *models.User, status models.RequestStatus) {
		require.NoError(t, db.Create(&models.OvertimeRequest{
			UserID: u.ID, Date: models.MustDate("2026-03-02"), StartTime: "18:00:00", EndTime: "20:00:00",
			TotalHours: 2, Status: status, Reason: "r",
		}).Error)
	}

	leave(a, models.StatusPending, "2026-03-10", "2026-03-11")
	leave(c, models.StatusPending, "2026-03-10", "2026-03-11")
	leave(a, models.StatusApproved, "2026-03-01", "2026-03-05")
	leave(c, models.StatusApproved, "2026-03-03", "2026-03-03")
	leave(b, models.StatusRejected, "2026-03-01", "2026-03-05")
	ot(b, models.StatusPending)
	ot(b, models.StatusPending)
	ot(c, models.StatusApproved)
	return w
}

func newService(w *world, c *mocks.MockCache, ttl time.Duration) *Service {
	s := NewService(
		repository.NewUserRepository(w.db),
		repository.NewLeaveRepository(w.db),
		repository.NewOvertimeRepository(w.db),
		nil, ttl, logger.NewNop(),
	)
	if c != nil {
		s.cache = c
	}
	s.today = func() models.Date { return models.MustDate("2026-03-03") }
	return s
}

func TestGetStats_Scoping(t *testing.T) {
	w := seedWorld(t)
	svc := newService(w, nil, 0)
	ctx := context.Background()

	global, err := svc.GetStats(ctx, requests.ActorFromUser(w.admin))
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalEmployees: 6, PendingLeaves: 2, PendingOT: 2, OnLeaveToday: 2}, global)

	team, err := svc.GetStats(ctx, requests.ActorFromUser(w.m1))
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalEmployees: 2, PendingLeaves: 1, PendingOT: 2, OnLeaveToday: 1}, team)

	other, err := svc.GetStats(ctx, requests.ActorFromUser(w.m2))
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalEmployees: 1, PendingLeaves: 1, PendingOT: 0, OnLeaveToday: 1}, other)

	_, err = svc.GetStats(ctx, requests.Actor{ID: 99, Role: models.RoleEmployee, Active: true})
	assert.ErrorIs(t, err, requests.ErrForbidden)
}

func TestGetStats_Cache(t *testing.T) {
	w := seedWorld(t)
	c := mocks.NewMockCache()
	svc := newService(w, c, time.Minute)
	ctx := context.Background()
	admin := requests.ActorFromUser(w.admin)

	first, err := svc.GetStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Sets)
	assert.Equal(t, 1, c.Keys())

	// a new employee is invisible until the cache is dropped
	testdb.User(t, w.db, "late", models.RoleEmployee, nil)
	cached, err := svc.GetStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, first.TotalEmployees, cached.TotalEmployees)
	assert.Equal(t, 1, c.Sets, "served from cache")

	_, err = svc.GetStats(ctx, requests.ActorFromUser(w.m1))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Keys())

	require.NoError(t, svc.InvalidateStats(ctx))
	assert.Zero(t, c.Keys())

	fresh, err := svc.GetStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, first.TotalEmployees+1, fresh.TotalEmployees)
}

func TestGetStats_CacheFailureFallsBack(t *testing.T) {
	w := seedWorld(t)
	c := mocks.NewMockCache()
	c.Fail = true
	svc := newService(w, c, time.Minute)

	stats, err := svc.GetStats(context.Background(), requests.ActorFromUser(w.admin))
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalEmployees)

	assert.Error(t, svc.InvalidateStats(context.Background()))
}

func TestInvalidateStats_NoCache(t *testing.T) {
	w := seedWorld(t)
	svc := newService(w, nil, time.Minute)
	assert.NoError(t, svc.InvalidateStats(context.Background()))
}
