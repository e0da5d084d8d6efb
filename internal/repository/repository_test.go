package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dexhub/hr-portal/internal/models"
)

// setupTestDB creates an in-memory SQLite database with foreign keys enforced.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open test database")

	// A second pooled connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	wrapped := &DB{db}
	require.NoError(t, wrapped.AutoMigrate(), "migrate test database")

	t.Cleanup(func() {
		if err := wrapped.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return wrapped
}

func createTestUser(t *testing.T, db *DB, name string, role models.Role, managerID *uint) *models.User {
	t.Helper()

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		FullName:     name,
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestLeaveType(t *testing.T, db *DB, name string) *models.LeaveType {
	t.Helper()

	lt := &models.LeaveType{Name: name, DefaultDaysPerYear: 12, ColorHex: "#FFAB00"}
	require.NoError(t, db.Create(lt).Error)
	return lt
}

func createTestLeave(t *testing.T, db *DB, owner *models.User, lt *models.LeaveType, status models.RequestStatus, createdAt time.Time) *models.LeaveRequest {
	t.Helper()

	req := &models.LeaveRequest{
		UserID:      owner.ID,
		LeaveTypeID: lt.ID,
		StartDate:   models.MustDate("2026-03-01"),
		EndDate:     models.MustDate("2026-03-05"),
		TotalDays:   5,
		Status:      status,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func createTestOvertime(t *testing.T, db *DB, owner *models.User, status models.RequestStatus, createdAt time.Time) *models.OvertimeRequest {
	t.Helper()

	req := &models.OvertimeRequest{
		UserID:     owner.ID,
		Date:       models.MustDate("2026-03-02"),
		StartTime:  "18:00:00",
		EndTime:    "20:00:00",
		TotalHours: 2,
		Status:     status,
		Reason:     "release",
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func uintPtr(v uint) *uint { return &v }
