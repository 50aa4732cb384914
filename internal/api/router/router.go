package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teachload/backend/config"
	"teachload/backend/internal/api/handler"
	"teachload/backend/internal/api/middleware"
	"teachload/backend/pkg/jwt"
	"teachload/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20)) // 1 MiB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("dean"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("dean"), h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // dean 或本人（Handler 层鉴权）
				users.PUT("/:id/role", middleware.RoleAuth("dean"), h.User.AssignRole)
			}

			// 研究所模块
			institutes := authorized.Group("/institutes")
			{
				institutes.GET("", h.Institute.ListInstitutes)
				institutes.GET("/:id", h.Institute.GetInstitute)
				institutes.POST("", middleware.RoleAuth("dean"), h.Institute.CreateInstitute)
				institutes.PUT("/:id", middleware.RoleAuth("dean"), h.Institute.UpdateInstitute)
				institutes.DELETE("/:id", middleware.RoleAuth("dean"), h.Institute.DeleteInstitute)
			}

			// 学期模块
			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Semester.ListSemesters)
				semesters.GET("/:id", h.Semester.GetSemester)
				semesters.POST("", middleware.RoleAuth("dean"), h.Semester.CreateSemester)
				semesters.PUT("/:id", middleware.RoleAuth("dean"), h.Semester.UpdateSemester)
			}

			// 规划阶段模块
			phases := authorized.Group("/phases")
			{
				phases.GET("", h.Phase.ListPhases)
				phases.GET("/current/submission-status", h.Phase.CheckSubmissionStatus)
				phases.GET("/:id", h.Phase.GetPhase)
				phases.POST("", middleware.RoleAuth("dean"), h.Phase.StartPhase)
				phases.PUT("/:id", middleware.RoleAuth("dean"), h.Phase.UpdatePhase)
				phases.POST("/:id/close", middleware.RoleAuth("dean"), h.Phase.ClosePhase)
				phases.GET("/:id/submissions", middleware.RoleAuth("dean"), h.Phase.ListPhaseSubmissions)
				phases.POST("/:id/reminders", middleware.RoleAuth("dean"), h.Phase.SendReminders)
				phases.GET("/:id/reminders", middleware.RoleAuth("dean"), h.Phase.ListReminders)
			}

			// 教学计划模块
			plans := authorized.Group("/plans")
			{
				plans.GET("/my", h.Plan.ListMyPlans)
				plans.GET("/:id", h.Plan.GetPlan)
				plans.POST("", h.Plan.CreatePlan)
				plans.PUT("/:id", h.Plan.UpdatePlan)
				plans.DELETE("/:id", h.Plan.DeletePlan)
				plans.POST("/:id/submit", h.Plan.SubmitPlan)
				plans.POST("/:id/approve", middleware.RoleAuth("dean"), h.Plan.ApprovePlan)
				plans.POST("/:id/reject", middleware.RoleAuth("dean"), h.Plan.RejectPlan)
			}

			// 归档模块（教授可查询本人记录，写操作仅 dean）
			archives := authorized.Group("/archives")
			{
				archives.GET("", h.Archive.ListArchives)
				archives.GET("/:id", h.Archive.GetArchive)
				archives.POST("", middleware.RoleAuth("dean"), h.Archive.ArchivePlan)
				archives.POST("/:id/restore", middleware.RoleAuth("dean"), h.Archive.RestoreArchive)
				archives.POST("/cleanup", middleware.RoleAuth("dean"), h.Archive.CleanupArchives)
			}

			// 统计模块
			statistics := authorized.Group("/statistics")
			{
				statistics.GET("/phases/:id", middleware.RoleAuth("dean"), h.Statistics.GetPhaseStatistics)
				statistics.GET("/history", h.Statistics.GetPhaseHistory)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/archives", h.Export.ExportArchives)
			}

			// 规划设置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("", middleware.RoleAuth("dean"), h.Settings.GetSettings)
				settings.PUT("", middleware.RoleAuth("dean"), h.Settings.UpdateSettings)
			}
		}
	}

	return r
}

