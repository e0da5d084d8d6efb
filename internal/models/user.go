// Package models defines the persisted entities of the HR portal.
package models

import (
	"time"
)

// Role is the authorization role carried by every user.
type Role string

// Role constants.
const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanApprove reports whether the role may act on approvals at all.
func (r Role) CanApprove() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents an employee account. ManagerID forms a forest: cycles are rejected
// where users are created or updated.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	FullName     string    `gorm:"not null;size:255" json:"full_name"`
	Role         Role      `gorm:"not null;size:20;index" json:"role"`
	Designation  string    `gorm:"size:255" json:"designation,omitempty"`
	DOB          *Date     `gorm:"column:dob" json:"dob,omitempty"`
	PhoneNumber  string    `gorm:"size:50" json:"phone_number,omitempty"`
	JoinDate     *Date     `json:"join_date,omitempty"`
	ManagerID    *uint     `gorm:"index" json:"manager_id"`
	Manager      *User     `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL" json:"-"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// UserMini is the trimmed owner view embedded in request responses.
type UserMini struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Mini returns the trimmed view of u.
func (u *User) Mini() *UserMini {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserMini{ID: u.ID, FullName: u.FullName, Email: u.Email}
}
