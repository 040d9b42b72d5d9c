package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/internal/api/handler"
	"schedule-visualizer/backend/internal/api/middleware"
	"schedule-visualizer/backend/pkg/jwt"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 或未开启限流时，解析与导入接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB << 20))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	if !cfg.RateLimit.Enabled {
		limiter = nil
	}
	limited := middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 工作区（无需认证）
		v1.POST("/workspaces", limited, h.Workspace.CreateWorkspace)

		// 解析预览（无状态，无需认证）
		v1.POST("/parse", limited, h.Course.Preview)

		authorized := v1.Group("")
		authorized.Use(middleware.WorkspaceAuth(jwtMgr))
		{
			// 当前课程列表
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.POST("", h.Course.CreateCourse)
				courses.DELETE("", h.Course.ClearCourses)
				courses.POST("/parse", limited, h.Course.ImportText)
				courses.POST("/ocr", limited, h.Course.ImportRecognized)
				courses.POST("/ics", limited, h.Course.ImportICS)
				courses.PUT("/:id", h.Course.UpdateCourse)
				courses.DELETE("/:id", h.Course.DeleteCourse)
			}

			// 周视图
			timetable := authorized.Group("/timetable")
			{
				timetable.GET("", h.Timetable.GetTimetable)
				timetable.POST("/conflicts", h.Timetable.CheckConflicts)
			}

			// 已保存课表
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.ListSchedules)
				schedules.POST("", h.Schedule.SaveSchedule)
				schedules.POST("/build", h.Schedule.BuildSchedule)
				schedules.GET("/export", h.Schedule.ExportSchedules)
				schedules.POST("/import", limited, h.Schedule.ImportSchedules)
				schedules.GET("/:id", h.Schedule.GetSchedule)
				schedules.POST("/:id/load", h.Schedule.LoadSchedule)
				schedules.DELETE("/:id", h.Schedule.DeleteSchedule)
			}

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/timetable.xlsx", h.Export.ExportXLSX)
				export.GET("/timetable.ics", h.Export.ExportICS)
			}
		}
	}

	return r
}
