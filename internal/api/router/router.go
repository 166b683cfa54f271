package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classroom-timetable/config"
	"classroom-timetable/internal/api/handler"
	"classroom-timetable/internal/api/middleware"
	"classroom-timetable/internal/model"
	"classroom-timetable/pkg/jwt"
	"classroom-timetable/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 吊销检查与限流均降级关闭
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	resolver middleware.ActorResolver,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 避免 *redis.Client(nil) 以非 nil 接口传入中间件
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db, rdb))

	rateLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window)
	superAdmin := middleware.RoleAuth(model.KindSuperAdmin)
	deptAdmin := middleware.RoleAuth(model.KindAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", rateLimit, h.Auth.Register)
			auth.POST("/login", rateLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, resolver))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 超级管理员模块
			admin := authorized.Group("/super-admin", superAdmin)
			{
				admin.GET("/pending-requests", h.Admin.ListPending)
				admin.GET("/active-users", h.Admin.ListActive)
				admin.GET("/disabled-users", h.Admin.ListDisabled)
				admin.GET("/stats", h.Admin.Stats)
				admin.GET("/timetables", h.Admin.ListTimetables)
				admin.PUT("/approve/:id", h.Admin.Approve)
				admin.DELETE("/reject/:id", h.Admin.Reject)
				admin.PUT("/toggle-status/:id", h.Admin.ToggleStatus)
				admin.DELETE("/users/:id", h.Admin.DeleteUser)
			}

			// 课表模块；查看权限与删除归属在 Service 层判定
			timetables := authorized.Group("/timetables")
			{
				timetables.POST("", deptAdmin, h.Timetable.CreateTimetable)
				timetables.GET("", h.Timetable.ListTimetables)
				timetables.GET("/:id", h.Timetable.GetTimetable)
				timetables.GET("/:id/export", h.Export.ExportTimetable)
				timetables.DELETE("/:id", middleware.RoleAuth(model.KindAdmin, model.KindSuperAdmin), h.Timetable.DeleteTimetable)
				timetables.PUT("/cell/:cellId", deptAdmin, h.Timetable.UpdateCell)
			}
		}
	}

	return r
}

// healthCheck 存活检查，附带数据库与 Redis 连通性
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["status"], status["database"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unreachable"
			}
		}

		c.JSON(code, status)
	}
}
