package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/response"
)

// 认证中间件写入 Gin 上下文的键
const (
	CtxUserID       = "user_id"
	CtxRole         = "role"
	CtxDepartmentID = "department_id"
	CtxTokenID      = "token_id"
	CtxTokenExpiry  = "token_expires_at"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "authentication credentials were not provided")
		return "", false
	}
	return s, true
}

// MustGetRequester 从 Gin 上下文中提取请求者身份（用户、角色、部门）
func MustGetRequester(c *gin.Context) (service.Requester, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Requester{}, false
	}
	role := c.GetString(CtxRole)
	if role == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "authentication credentials were not provided")
		return service.Requester{}, false
	}
	return service.Requester{
		UserID:       userID,
		Role:         role,
		DepartmentID: c.GetString(CtxDepartmentID),
	}, true
}

// tokenIdentity 当前 Access Token 的 jti 与过期时间（登出时使用）
func tokenIdentity(c *gin.Context) (string, time.Time) {
	return c.GetString(CtxTokenID), c.GetTime(CtxTokenExpiry)
}
