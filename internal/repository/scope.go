package repository

import "gorm.io/gorm"

// Scope 访客数据可见范围
//
// 所有访客相关的读写查询都必须经过 Scope 过滤；由 service 层根据请求者角色构造。
type Scope struct {
	// DepartmentID 非 nil 时仅匹配该部门的访客
	DepartmentID *string
	// Deny 为 true 时不匹配任何记录
	Deny bool
}

// Unrestricted 不限范围
func Unrestricted() Scope { return Scope{} }

// DepartmentOnly 限定单个部门
func DepartmentOnly(departmentID string) Scope {
	return Scope{DepartmentID: &departmentID}
}

// Nothing 不匹配任何记录
func Nothing() Scope { return Scope{Deny: true} }

// Apply 将范围条件追加到查询
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s.Deny {
		return db.Where("1 = 0")
	}
	if s.DepartmentID != nil {
		return db.Where("visitors.department_id = ?", *s.DepartmentID)
	}
	return db
}

// Allows 判断单条记录的部门是否落在范围内（用于内存过滤与测试替身）
func (s Scope) Allows(departmentID *string) bool {
	if s.Deny {
		return false
	}
	if s.DepartmentID == nil {
		return true
	}
	return departmentID != nil && *departmentID == *s.DepartmentID
}
