package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Username             string  `json:"username"              binding:"omitempty,max=150"`
	FirstName            string  `json:"first_name"            binding:"omitempty,max=150"`
	LastName             string  `json:"last_name"             binding:"omitempty,max=150"`
	Email                string  `json:"email"                 binding:"required,email,max=254"`
	Password             string  `json:"password"              binding:"required,min=8,max=128"`
	PasswordConfirmation string  `json:"password_confirmation" binding:"required"`
	Role                 string  `json:"role"                  binding:"omitempty,oneof=admin staff director"`
	DepartmentID         *string `json:"department_id"         binding:"omitempty"`
}

// UpdateUserRequest 更新用户请求；未提供的字段保持不变
//
// department_id 传空串表示解除部门关联。
type UpdateUserRequest struct {
	Username             *string `json:"username"              binding:"omitempty,min=1,max=150"`
	FirstName            *string `json:"first_name"            binding:"omitempty,max=150"`
	LastName             *string `json:"last_name"             binding:"omitempty,max=150"`
	Email                *string `json:"email"                 binding:"omitempty,email,max=254"`
	Password             *string `json:"password"              binding:"omitempty,min=8,max=128"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Role                 *string `json:"role"                  binding:"omitempty,oneof=admin staff director"`
	DepartmentID         *string `json:"department_id"`
	IsActive             *bool   `json:"is_active"`
}
