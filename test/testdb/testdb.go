// Package testdb opens migrated in-memory SQLite databases for service tests.
package testdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
)

// New returns an empty, migrated database with foreign keys enforced.
// It is closed when the test ends.
func New(t *testing.T) *repository.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	wrapped := &repository.DB{DB: db}
	require.NoError(t, wrapped.AutoMigrate(), "migrate test database")

	t.Cleanup(func() { _ = wrapped.Close() })
	return wrapped
}

// User inserts an active user named name with the given role and manager.
func User(t *testing.T, db *repository.DB, name string, role models.Role, managerID *uint) *models.User {
	t.Helper()

	u := &models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		FullName:     name,
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// LeaveType inserts a leave type.
func LeaveType(t *testing.T, db *repository.DB, name string) *models.LeaveType {
	t.Helper()

	lt := &models.LeaveType{Name: name, DefaultDaysPerYear: 12, ColorHex: "#FFAB00"}
	require.NoError(t, db.Create(lt).Error)
	return lt
}
