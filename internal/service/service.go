package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/repository"
	"github.com/mzaraf/vms/pkg/jwt"
)

// TokenBlacklist Token 黑名单存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Department DepartmentService
	Visitor    VisitorService
	Stats      StatsService
	Export     ExportService
	Calendar   CalendarService
}

// NewService 创建 Service 聚合
//
// blacklist 可为 nil（未启用 Redis），此时登出与刷新不做黑名单记录。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		Visitor:    NewVisitorService(&cfg.Visitor, repo, logger),
		Stats:      NewStatsService(&cfg.Visitor, repo, logger),
		Export:     NewExportService(&cfg.Visitor, repo, logger),
		Calendar:   NewCalendarService(&cfg.Visitor, repo, logger),
	}
}
