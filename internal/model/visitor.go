package model

import (
	"time"

	"gorm.io/gorm"
)

// VisitorStatus 访客状态
type VisitorStatus string

const (
	VisitorStatusPreRegistered VisitorStatus = "pre-registered"
	VisitorStatusCheckedIn     VisitorStatus = "checked-in"
	VisitorStatusCheckedOut    VisitorStatus = "checked-out"
)

// Valid 判断状态值是否合法
func (s VisitorStatus) Valid() bool {
	switch s {
	case VisitorStatusPreRegistered, VisitorStatusCheckedIn, VisitorStatusCheckedOut:
		return true
	}
	return false
}

// Display 状态展示名
func (s VisitorStatus) Display() string {
	switch s {
	case VisitorStatusPreRegistered:
		return "Pre-Registered"
	case VisitorStatusCheckedIn:
		return "Checked In"
	case VisitorStatusCheckedOut:
		return "Checked Out"
	}
	return string(s)
}

// Next 状态机的唯一后继状态；checked-out 为终态
func (s VisitorStatus) Next() (VisitorStatus, bool) {
	switch s {
	case VisitorStatusPreRegistered:
		return VisitorStatusCheckedIn, true
	case VisitorStatusCheckedIn:
		return VisitorStatusCheckedOut, true
	}
	return "", false
}

// Visitor 访客表 对应 visitors
//
// 状态只允许 pre-registered → checked-in → checked-out 单向推进，
// check_in_time / check_out_time 仅在进入对应状态时写入。
type Visitor struct {
	VisitorID    string        `gorm:"type:uuid;primaryKey"                               json:"visitor_id"`
	Name         string        `gorm:"type:varchar(100);not null"                         json:"name"`
	Email        *string       `gorm:"type:varchar(254)"                                  json:"email,omitempty"`
	Phone        string        `gorm:"type:varchar(20);not null"                          json:"phone"`
	Purpose      string        `gorm:"type:text;not null"                                 json:"purpose"`
	DepartmentID *string       `gorm:"type:uuid;index"                                    json:"department_id,omitempty"`
	Host         string        `gorm:"type:varchar(100);not null"                         json:"host"`
	Organization string        `gorm:"type:varchar(100);not null;default:''"              json:"organization"`
	Address      string        `gorm:"type:text;not null;default:''"                      json:"address"`
	Status       VisitorStatus `gorm:"type:varchar(15);not null;default:'pre-registered'" json:"status"`
	VisitDate    time.Time     `gorm:"type:date;not null;index"                           json:"visit_date"`
	CheckInTime  *time.Time    `                                                          json:"check_in_time,omitempty"`
	CheckOutTime *time.Time    `                                                          json:"check_out_time,omitempty"`
	Avatar       *string       `gorm:"type:varchar(500)"                                  json:"avatar,omitempty"`
	CreatedBy    *string       `gorm:"type:uuid"                                          json:"created_by,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	Creator    *User       `gorm:"foreignKey:CreatedBy;references:UserID;constraint:OnDelete:SET NULL"         json:"creator,omitempty"`
}

// TableName 指定表名
func (Visitor) TableName() string { return "visitors" }

// BeforeCreate 自动生成主键
func (v *Visitor) BeforeCreate(_ *gorm.DB) error {
	if v.VisitorID == "" {
		v.VisitorID = newID()
	}
	return nil
}

// DepartmentName 部门名称，无部门时返回空串
func (v *Visitor) DepartmentName() string {
	if v.Department == nil {
		return ""
	}
	return v.Department.Name
}
