package dto

import "time"

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	Access    string       `json:"access"`
	Refresh   string       `json:"refresh"`
	ExpiresIn int          `json:"expires_in"` // Access Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	DepartmentID   *string    `json:"department_id"`
	DepartmentName *string    `json:"department_name"`
	IsActive       bool       `json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// ── 部门模块响应 ──

// DepartmentResponse 部门信息
type DepartmentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	VisitorCount int64     `json:"visitor_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ── 访客模块响应 ──

// VisitorResponse 访客信息
type VisitorResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          *string    `json:"email"`
	Phone          string     `json:"phone"`
	Purpose        string     `json:"purpose"`
	DepartmentID   *string    `json:"department_id"`
	DepartmentName *string    `json:"department_name"`
	Host           string     `json:"host"`
	Organization   string     `json:"organization"`
	Address        string     `json:"address"`
	Status         string     `json:"status"`
	StatusDisplay  string     `json:"status_display"`
	VisitDate      string     `json:"visit_date"` // YYYY-MM-DD
	CheckInTime    *time.Time `json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time"`
	Avatar         *string    `json:"avatar"`
	CreatedBy      *string    `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ── 统计模块响应 ──

// TimeSeriesPoint 时间序列中的一个桶
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DepartmentStat 部门维度计数；无部门访客的 department 为 null
type DepartmentStat struct {
	Department *string `json:"department"`
	Count      int64   `json:"count"`
}

// SummaryResponse 访客汇总
type SummaryResponse struct {
	Total         int64 `json:"total"`
	CheckedIn     int64 `json:"checked_in"`
	PreRegistered int64 `json:"pre_registered"`
	CheckedOut    int64 `json:"checked_out"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}
