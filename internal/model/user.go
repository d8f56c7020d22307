package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleDirector = "director"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleDirector:
		return true
	}
	return false
}

// User 用户表 对应 users
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey"                      json:"user_id"`
	Email        string     `gorm:"type:varchar(254);not null;unique"         json:"email"`
	Username     string     `gorm:"type:varchar(150);not null"                json:"username"`
	FirstName    string     `gorm:"type:varchar(150);not null;default:''"     json:"first_name"`
	LastName     string     `gorm:"type:varchar(150);not null;default:''"     json:"last_name"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                json:"-"`
	Role         string     `gorm:"type:varchar(10);not null;default:'staff'" json:"role"`
	DepartmentID *string    `gorm:"type:uuid;index"                           json:"department_id,omitempty"`
	IsActive     bool       `gorm:"not null;default:true"                     json:"is_active"`
	LastLoginAt  *time.Time `                                                 json:"last_login_at,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 自动生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = newID()
	}
	return nil
}

// DepartmentIDValue 部门 ID，无部门时返回空串
func (u *User) DepartmentIDValue() string {
	if u.DepartmentID == nil {
		return ""
	}
	return *u.DepartmentID
}
