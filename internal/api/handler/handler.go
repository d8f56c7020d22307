package handler

import (
	"gorm.io/gorm"

	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/redis"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Visitor    *VisitorHandler
	Stats      *StatsHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler 创建 Handler 聚合
//
// rdb 为 nil 表示未启用 Redis。
func NewHandler(svc *service.Service, db *gorm.DB, rdb *redis.Client) *Handler {
	var pinger Pinger
	if rdb != nil {
		pinger = rdb
	}
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Department: NewDepartmentHandler(svc.Department),
		Visitor:    NewVisitorHandler(svc.Visitor),
		Stats:      NewStatsHandler(svc.Stats),
		Export:     NewExportHandler(svc.Export, svc.Calendar),
		Health:     NewHealthHandler(db, pinger),
	}
}
