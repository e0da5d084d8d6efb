package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhub/hr-portal/internal/models"
)

func TestCatalogRepository_LeaveTypes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	lt := &models.LeaveType{Name: "Annual Leave", DefaultDaysPerYear: 20, CarryForward: true, ColorHex: "#00C853"}
	require.NoError(t, repo.CreateLeaveType(ctx, lt))

	byName, err := repo.GetLeaveTypeByName(ctx, "Annual Leave")
	require.NoError(t, err)
	assert.True(t, byName.CarryForward)

	lt.DefaultDaysPerYear = 25
	require.NoError(t, repo.UpdateLeaveType(ctx, lt))

	got, err := repo.GetLeaveType(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.DefaultDaysPerYear)

	assert.Error(t, repo.CreateLeaveType(ctx, &models.LeaveType{Name: "Annual Leave", ColorHex: "#000000"}))

	types, err := repo.ListLeaveTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestCatalogRepository_DeleteLeaveTypeRemovesRequests(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	emp := createTestUser(t, db, "emp", models.RoleEmployee, nil)
	doomed := createTestLeaveType(t, db, "Leave in OT")
	kept := createTestLeaveType(t, db, "Sick Leave")
	createTestLeave(t, db, emp, doomed, models.StatusPending, time.Now())
	survivor := createTestLeave(t, db, emp, kept, models.StatusPending, time.Now())

	require.NoError(t, repo.DeleteLeaveType(ctx, doomed.ID))

	var remaining []models.LeaveRequest
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, survivor.ID, remaining[0].ID)

	assert.ErrorIs(t, repo.DeleteLeaveType(ctx, doomed.ID), ErrNotFound)
	_, err := repo.GetLeaveType(ctx, doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogRepository_Holidays(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	later := &models.Holiday{Date: models.MustDate("2026-12-25"), Name: "Christmas", Type: models.HolidayPublic, IsRecurring: true}
	earlier := &models.Holiday{Date: models.MustDate("2026-01-26"), Name: "Republic Day", Type: models.HolidayPublic, IsRecurring: true}
	require.NoError(t, repo.CreateHoliday(ctx, later))
	require.NoError(t, repo.CreateHoliday(ctx, earlier))

	list, err := repo.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Republic Day", list[0].Name)

	byDate, err := repo.GetHolidayByDate(ctx, models.MustDate("2026-12-25"))
	require.NoError(t, err)
	assert.Equal(t, later.ID, byDate.ID)

	assert.Error(t, repo.CreateHoliday(ctx, &models.Holiday{Date: models.MustDate("2026-12-25"), Name: "Dup", Type: models.HolidayOptional}))

	require.NoError(t, repo.DeleteHoliday(ctx, later.ID))
	assert.ErrorIs(t, repo.DeleteHoliday(ctx, later.ID), ErrNotFound)
}
