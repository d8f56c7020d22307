package service

import (
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

// Requester 发起请求的已认证用户（来自 Access Token）
type Requester struct {
	UserID       string
	Role         string
	DepartmentID string // 无部门时为空串
}

// IsAdmin 是否管理员
func (r Requester) IsAdmin() bool { return r.Role == model.RoleAdmin }

// ScopeFor 根据请求者角色构造访客数据可见范围
//
// director 仅可见本部门；未分配部门的 director 不可见任何访客；
// admin 与 staff 不受限。
func ScopeFor(r Requester) repository.Scope {
	if r.Role != model.RoleDirector {
		return repository.Unrestricted()
	}
	if r.DepartmentID == "" {
		return repository.Nothing()
	}
	return repository.DepartmentOnly(r.DepartmentID)
}
