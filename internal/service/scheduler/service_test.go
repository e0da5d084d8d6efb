package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/mattermost"
	prommetrics "github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
	"github.com/dexhub/hr-portal/test/testdb"
)

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		name         string
		time         string
		skipWeekends bool
		want         string
		wantErr      bool
	}{
		{
			name:         "daily at 9am",
			time:         "09:00",
			skipWeekends: false,
			want:         "0 9 * * *",
			wantErr:      false,
		},
		{
			name:         "weekdays at 9am",
			time:         "09:00",
			skipWeekends: true,
			want:         "0 9 * * 1-5",
			wantErr:      false,
		},
		{
			name:         "daily at 14:30",
			time:         "14:30",
			skipWeekends: false,
			want:         "30 14 * * *",
			wantErr:      false,
		},
		{
			name:         "invalid format no colon",
			time:         "0900",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
		{
			name:         "invalid hour",
			time:         "25:00",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
		{
			name:         "invalid minute",
			time:         "09:60",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Scheduler: config.SchedulerConfig{
					Time:         tt.time,
					SkipWeekends: tt.skipWeekends,
				},
			}

			s := &Service{config: cfg}

			got, err := s.buildCronExpression()

			if (err != nil) != tt.wantErr {
				t.Errorf("buildCronExpression() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if got != tt.want {
				t.Errorf("buildCronExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeReminder struct {
	calls [][]mattermost.PendingItem
	err   error
}

func (f *fakeReminder) SendPendingReminder(_ context.Context, items []mattermost.PendingItem, _ time.Time) error {
	f.calls = append(f.calls, items)
	return f.err
}

func TestBuildPendingItems(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	managerID := uint(5)
	alice := &models.User{ID: 1, FullName: "Alice", ManagerID: &managerID}

	leaves := []models.LeaveRequest{{
		ID: 10, User: alice, LeaveType: &models.LeaveType{Name: "Sick Leave"},
		StartDate: models.MustDate("2026-03-04"), EndDate: models.MustDate("2026-03-08"),
		TotalDays: 5, CreatedAt: base.Add(time.Hour),
	}}
	overtime := []models.OvertimeRequest{{
		ID: 20, User: nil, Date: models.MustDate("2026-03-01"),
		StartTime: "22:00:00", EndTime: "02:00:00", TotalHours: 4, CreatedAt: base,
	}}

	lookups := 0
	names := func(id uint) string {
		lookups++
		assert.Equal(t, managerID, id)
		return "Maya"
	}

	items := buildPendingItems(leaves, overtime, names)
	require.Len(t, items, 2)

	assert.Equal(t, models.KindOvertime, items[0].Kind, "oldest first")
	assert.Equal(t, "unknown", items[0].Owner)
	assert.Equal(t, "", items[0].Manager)
	assert.Equal(t, "2026-03-01 22:00-02:00 (4.0h)", items[0].Summary)

	assert.Equal(t, uint(10), items[1].RequestID)
	assert.Equal(t, "Alice", items[1].Owner)
	assert.Equal(t, "Maya", items[1].Manager)
	assert.Equal(t, "Sick Leave 2026-03-04 to 2026-03-08 (5 days)", items[1].Summary)
	assert.Equal(t, 1, lookups)
}

func TestFilterRecent(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	items := []mattermost.PendingItem{
		{RequestID: 1, SubmittedAt: now.Add(-6 * time.Hour)},
		{RequestID: 2, SubmittedAt: now.Add(-2 * time.Hour)},
		{RequestID: 3, SubmittedAt: now.Add(-50 * time.Hour)},
	}

	tests := []struct {
		name   string
		minAge time.Duration
		want   []uint
	}{
		{name: "four hour minimum", minAge: 4 * time.Hour, want: []uint{1, 3}},
		{name: "zero keeps everything", minAge: 0, want: []uint{1, 2, 3}},
		{name: "all filtered", minAge: 100 * time.Hour, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint
			for _, item := range filterRecent(items, now, tt.minAge) {
				got = append(got, item.RequestID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func newReminderFixture(t *testing.T) (*repository.DB, time.Time) {
	t.Helper()

	db := testdb.New(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	manager := testdb.User(t, db, "maya", models.RoleManager, nil)
	alice := testdb.User(t, db, "alice", models.RoleEmployee, &manager.ID)
	lt := testdb.LeaveType(t, db, "Sick Leave")

	require.NoError(t, db.Create(&models.LeaveRequest{
		UserID: alice.ID, LeaveTypeID: lt.ID, Status: models.StatusPending, TotalDays: 2,
		StartDate: models.MustDate("2026-03-05"), EndDate: models.MustDate("2026-03-06"),
		CreatedAt: now.Add(-30 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.LeaveRequest{
		UserID: alice.ID, LeaveTypeID: lt.ID, Status: models.StatusApproved, TotalDays: 1,
		StartDate: models.MustDate("2026-03-09"), EndDate: models.MustDate("2026-03-09"),
		CreatedAt: now.Add(-30 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.OvertimeRequest{
		UserID: alice.ID, Date: models.MustDate("2026-03-01"), StartTime: "18:00:00", EndTime: "20:00:00",
		TotalHours: 2, Status: models.StatusPending, Reason: "release", CreatedAt: now.Add(-time.Hour),
	}).Error)

	return db, now
}

func TestRunPendingReminder(t *testing.T) {
	db, now := newReminderFixture(t)
	reminder := &fakeReminder{}

	cfg := &config.Config{Scheduler: config.SchedulerConfig{MinAgeHours: 4}}
	svc := NewService(cfg,
		repository.NewLeaveRepository(db),
		repository.NewOvertimeRepository(db),
		repository.NewUserRepository(db),
		nil, logger.NewNop())
	svc.reminder = reminder
	svc.now = func() time.Time { return now }

	svc.RunPendingReminder(context.Background())

	require.Len(t, reminder.calls, 1)
	items := reminder.calls[0]
	require.Len(t, items, 1, "the one-hour-old overtime request is too recent")
	assert.Equal(t, models.KindLeave, items[0].Kind)
	assert.Equal(t, "alice", items[0].Owner)
	assert.Equal(t, "maya", items[0].Manager)

	assert.Equal(t, float64(1), testutil.ToFloat64(prommetrics.PendingRequests.WithLabelValues("leave")))
	assert.Equal(t, float64(1), testutil.ToFloat64(prommetrics.PendingRequests.WithLabelValues("overtime")))
}

func TestRunPendingReminder_NothingOldEnough(t *testing.T) {
	db, now := newReminderFixture(t)
	reminder := &fakeReminder{}

	cfg := &config.Config{Scheduler: config.SchedulerConfig{MinAgeHours: 48}}
	svc := NewServiceWithInterfaces(cfg,
		repository.NewLeaveRepository(db),
		repository.NewOvertimeRepository(db),
		repository.NewUserRepository(db),
		reminder, logger.NewNop())
	svc.now = func() time.Time { return now }

	svc.RunPendingReminder(context.Background())
	assert.Empty(t, reminder.calls)
}

func TestRunPendingReminder_SendFailure(t *testing.T) {
	db, now := newReminderFixture(t)
	reminder := &fakeReminder{err: errors.New("webhook down")}

	cfg := &config.Config{Scheduler: config.SchedulerConfig{}}
	svc := NewServiceWithInterfaces(cfg,
		repository.NewLeaveRepository(db),
		repository.NewOvertimeRepository(db),
		repository.NewUserRepository(db),
		reminder, logger.NewNop())
	svc.now = func() time.Time { return now }

	before := testutil.ToFloat64(prommetrics.SchedulerNotificationsFailedTotal.WithLabelValues("mattermost_error"))
	svc.RunPendingReminder(context.Background())

	require.Len(t, reminder.calls, 1)
	assert.Len(t, reminder.calls[0], 2)
	assert.Equal(t, before+1, testutil.ToFloat64(prommetrics.SchedulerNotificationsFailedTotal.WithLabelValues("mattermost_error")))
}

func TestStart_Disabled(t *testing.T) {
	svc := NewServiceWithInterfaces(&config.Config{}, nil, nil, nil, nil, logger.NewNop())
	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestStart_InvalidTimezone(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: true, Time: "09:00", Timezone: "Mars/Olympus"}}
	svc := NewServiceWithInterfaces(cfg, nil, nil, nil, nil, logger.NewNop())
	err := svc.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}
