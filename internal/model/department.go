package model

import "gorm.io/gorm"

// DepartmentNameMinLen 部门名称最小长度
const DepartmentNameMinLen = 3

// Department 部门表 对应 departments
type Department struct {
	DepartmentID string  `gorm:"type:uuid;primaryKey"              json:"department_id"`
	Name         string  `gorm:"type:varchar(100);not null;unique" json:"name"`
	Description  *string `gorm:"type:text"                         json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// BeforeCreate 自动生成主键
func (d *Department) BeforeCreate(_ *gorm.DB) error {
	if d.DepartmentID == "" {
		d.DepartmentID = newID()
	}
	return nil
}
