package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/api/handler"
	"github.com/mzaraf/vms/internal/api/middleware"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/pkg/jwt"
	"github.com/mzaraf/vms/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
//
// rdb 为 nil 时 Token 黑名单与登录限流均降级为不启用。
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	var (
		blacklist middleware.BlacklistChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist, limiter = rdb, rdb
	}

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	{
		// 认证模块（无需认证）
		loginLimit := middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, logger)
		auth := api.Group("/auth")
		{
			auth.POST("/token/", loginLimit, h.Auth.Login)
			auth.POST("/login/", loginLimit, h.Auth.Login)
			auth.POST("/token/refresh/", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.GET("/auth/me/", h.Auth.Me)
			authorized.POST("/auth/logout/", h.Auth.Logout)

			adminOnly := middleware.RoleAuth(model.RoleAdmin)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/", h.User.List)
				users.POST("/", adminOnly, h.User.Create)
				users.GET("/:id/", adminOnly, h.User.Get)
				users.PUT("/:id/", adminOnly, h.User.Update)
				users.PATCH("/:id/", adminOnly, h.User.Update)
				users.DELETE("/:id/", adminOnly, h.User.Delete)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("/", h.Department.List)
				departments.GET("/:id/", h.Department.Get)
				departments.POST("/", adminOnly, h.Department.Create)
				departments.PUT("/:id/", adminOnly, h.Department.Update)
				departments.PATCH("/:id/", adminOnly, h.Department.Update)
				departments.DELETE("/:id/", adminOnly, h.Department.Delete)
			}

			// 访客模块（可见范围由 Service 层按请求者角色限定）
			visitors := authorized.Group("/visitors")
			{
				visitors.GET("/", h.Visitor.List)
				visitors.POST("/", h.Visitor.Create)

				// 统计与导出
				visitors.GET("/stats/", h.Stats.Stats)
				visitors.GET("/department_stats/", h.Stats.DepartmentStats)
				visitors.GET("/summary/", h.Stats.Summary)
				visitors.GET("/export/", middleware.RoleAuth(model.RoleAdmin, model.RoleDirector), h.Export.ExportVisitors)
				visitors.GET("/calendar.ics", h.Export.Calendar)

				visitors.GET("/:id/", h.Visitor.Get)
				visitors.PUT("/:id/", h.Visitor.Update)
				visitors.PATCH("/:id/", h.Visitor.Update)
				visitors.DELETE("/:id/", h.Visitor.Delete)
				visitors.POST("/:id/check_in/", h.Visitor.CheckIn)
				visitors.POST("/:id/check_out/", h.Visitor.CheckOut)
			}
		}
	}

	return r
}
