package models

import (
	"time"
)

// OvertimeRequest is an employee's claim for hours worked outside the schedule on one date.
// StartTime and EndTime are wall-clock values in HH:MM:SS; an EndTime not after StartTime
// means the shift ended the following day.
type OvertimeRequest struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Date           Date          `gorm:"column:ot_date;not null" json:"ot_date"`
	StartTime      string        `gorm:"not null;size:8" json:"start_time"`
	EndTime        string        `gorm:"not null;size:8" json:"end_time"`
	TotalHours     float64       `gorm:"not null" json:"total_hours"`
	Status         RequestStatus `gorm:"not null;size:20;index" json:"status"`
	Reason         string        `gorm:"type:text;not null" json:"reason"`
	ManagerComment *string       `gorm:"type:text" json:"manager_comment"`
	ApproverID     *uint         `gorm:"index" json:"approver_id"`
	Approver       *User         `gorm:"foreignKey:ApproverID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for OvertimeRequest model.
func (OvertimeRequest) TableName() string {
	return "overtime_requests"
}
