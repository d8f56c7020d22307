package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// LogoutRequest 登出请求；refresh 可选，提供时一并作废
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}
