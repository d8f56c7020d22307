package dto

// ── 访客模块 DTO ──

// CreateVisitorRequest 登记访客请求
//
// visit_date 格式为 YYYY-MM-DD；status 省略时默认 checked-in。
type CreateVisitorRequest struct {
	Name         string  `json:"name"          binding:"required,max=100"`
	Email        *string `json:"email"         binding:"omitempty,max=254"`
	Phone        string  `json:"phone"         binding:"required,max=20"`
	Purpose      string  `json:"purpose"       binding:"required"`
	DepartmentID string  `json:"department_id" binding:"required"`
	Host         string  `json:"host"          binding:"required,max=100"`
	Organization string  `json:"organization"  binding:"omitempty,max=100"`
	Address      string  `json:"address"`
	Status       string  `json:"status"`
	VisitDate    string  `json:"visit_date"    binding:"required"`
	Avatar       *string `json:"avatar"        binding:"omitempty,max=500"`
}

// UpdateVisitorRequest 编辑访客请求；仅描述性字段可改
//
// 状态与签到/签离时间只能通过 check_in / check_out 修改。
type UpdateVisitorRequest struct {
	Name         *string `json:"name"          binding:"omitempty,max=100"`
	Email        *string `json:"email"         binding:"omitempty,max=254"`
	Phone        *string `json:"phone"         binding:"omitempty,max=20"`
	Purpose      *string `json:"purpose"`
	DepartmentID *string `json:"department_id"`
	Host         *string `json:"host"          binding:"omitempty,max=100"`
	Organization *string `json:"organization"  binding:"omitempty,max=100"`
	Address      *string `json:"address"`
	VisitDate    *string `json:"visit_date"`
	Avatar       *string `json:"avatar"        binding:"omitempty,max=500"`
}

// VisitorListRequest 访客列表查询参数
type VisitorListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pre-registered checked-in checked-out"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// StatsRequest 时间序列统计参数；period 省略时按 week
type StatsRequest struct {
	Period string `form:"period"`
}

// CalendarRequest 日历订阅参数
type CalendarRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}
