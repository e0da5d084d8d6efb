package models

import (
	"time"
)

// HolidayType classifies a holiday.
type HolidayType string

// HolidayType constants.
const (
	HolidayPublic   HolidayType = "PUBLIC"
	HolidayOptional HolidayType = "OPTIONAL"
)

// Valid reports whether t is a known holiday type.
func (t HolidayType) Valid() bool {
	return t == HolidayPublic || t == HolidayOptional
}

// LeaveType is a category of leave with its yearly allotment.
type LeaveType struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Name               string `gorm:"uniqueIndex;not null;size:100" json:"name"`
	DefaultDaysPerYear int    `gorm:"not null" json:"default_days_per_year"`
	CarryForward       bool   `gorm:"not null" json:"carry_forward"`
	ColorHex           string `gorm:"not null;size:16" json:"color_hex"`
}

// TableName specifies the table name for LeaveType model.
func (LeaveType) TableName() string {
	return "leave_types"
}

// LeaveRequest is an employee's request for an inclusive range of days off.
type LeaveRequest struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LeaveTypeID    uint          `gorm:"not null;index" json:"leave_type_id"`
	LeaveType      *LeaveType    `gorm:"foreignKey:LeaveTypeID;constraint:OnDelete:CASCADE" json:"-"`
	StartDate      Date          `gorm:"not null" json:"start_date"`
	EndDate        Date          `gorm:"not null" json:"end_date"`
	TotalDays      float64       `gorm:"not null" json:"total_days"`
	Status         RequestStatus `gorm:"not null;size:20;index" json:"status"`
	Reason         string        `gorm:"type:text" json:"reason,omitempty"`
	ManagerComment *string       `gorm:"type:text" json:"manager_comment"`
	ApproverID     *uint         `gorm:"index" json:"approver_id"`
	Approver       *User         `gorm:"foreignKey:ApproverID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for LeaveRequest model.
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Holiday is a company-wide day off.
type Holiday struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Date        Date        `gorm:"uniqueIndex;not null" json:"date"`
	Name        string      `gorm:"not null;size:255" json:"name"`
	Type        HolidayType `gorm:"not null;size:20" json:"type"`
	IsRecurring bool        `gorm:"not null" json:"is_recurring"`
}

// TableName specifies the table name for Holiday model.
func (Holiday) TableName() string {
	return "holidays"
}
