package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/pkg/response"
)

const (
	healthTimeout = 2 * time.Second

	healthUp       = "up"
	healthDown     = "down"
	healthDisabled = "disabled"
)

// Pinger 可做连通性检查的依赖（*redis.Client 满足）
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	db    *gorm.DB
	redis Pinger
}

// NewHealthHandler 创建 HealthHandler；redis 为 nil 表示未启用
func NewHealthHandler(db *gorm.DB, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health 检查数据库与 Redis 连通性
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	result := dto.HealthResponse{
		Status:   "ok",
		Database: h.pingDB(ctx),
		Redis:    healthDisabled,
	}
	if h.redis != nil {
		result.Redis = healthUp
		if err := h.redis.Ping(ctx); err != nil {
			result.Redis = healthDown
		}
	}

	// Redis 可降级，只有数据库不可用才判定为不健康
	if result.Database != healthUp {
		result.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.CodeInternal,
			Message: "service unavailable",
			Data:    result,
		})
		return
	}
	response.OK(c, result)
}

func (h *HealthHandler) pingDB(ctx context.Context) string {
	if h.db == nil {
		return healthDown
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return healthDown
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return healthDown
	}
	return healthUp
}
