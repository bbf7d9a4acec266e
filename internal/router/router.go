package router

import (
	"net/http"
	"time"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/database"
	"eduflix/backend/internal/handlers"
	phxmiddleware "eduflix/backend/internal/middleware"
	"eduflix/backend/internal/models"
	"eduflix/backend/internal/oauth2auth"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configura e retorna uma instância do Gin Engine.
func SetupRouter(log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(phxmiddleware.Metrics())
	router.Use(phxmiddleware.GinZap(log, time.RFC3339, true))
	router.Use(phxmiddleware.GinRecovery(log, true))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthCheckHandler)

	setupAuthRoutes(router)
	setupV1Routes(router)

	return router
}

func healthCheckHandler(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err != nil {
		phxlog.L.Error("Erro ao obter a instância do DB para o health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database instance error"})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		phxlog.L.Error("Falha no ping do banco de dados durante o health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database ping failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
	})
}

func setupAuthRoutes(r *gin.Engine) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", handlers.RegisterHandler)
		authRoutes.POST("/login", handlers.LoginHandler)
		authRoutes.POST("/login/2fa/verify", handlers.LoginVerifyTOTPHandler)
		authRoutes.POST("/google-login", handlers.GoogleLoginHandler)
		authRoutes.POST("/forgot-password", handlers.ForgotPasswordHandler)
		authRoutes.POST("/reset-password", handlers.ResetPasswordHandler)

		oauth2GoogleGroup := authRoutes.Group("/oauth2/google")
		{
			oauth2GoogleGroup.GET("/login", oauth2auth.GoogleLoginHandler)
			oauth2GoogleGroup.GET("/callback", oauth2auth.GoogleCallbackHandler)
		}

		// Operações de conta: autenticadas, sob o mesmo prefixo /auth.
		protected := authRoutes.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			userRoutes := protected.Group("/users")
			{
				userRoutes.GET("", handlers.ListUsersHandler)
				userRoutes.GET("/:id", handlers.GetUserHandler)
				userRoutes.PUT("/:id", handlers.UpdateUserHandler)
				userRoutes.DELETE("/:id", auth.RequireRoles(models.RoleAdmin), handlers.DeleteUserHandler)
			}
			protected.POST("/upload-avatar", handlers.UploadAvatarHandler)
			protected.PUT("/update-profile", handlers.UpdateProfileHandler)
		}
	}
}

func setupV1Routes(r *gin.Engine) {
	apiV1 := r.Group("/api/v1")

	// Leituras do catálogo ficam abertas; escrita exige admin ou professor.
	catalogWrite := auth.RequireRoles(models.RoleAdmin, models.RoleProfessor)

	categoryRoutes := apiV1.Group("/categories")
	{
		categoryRoutes.GET("", handlers.ListCategoriesHandler)
		categoryRoutes.GET("/:id", handlers.GetCategoryHandler)
		categoryRoutes.POST("", auth.AuthMiddleware(), catalogWrite, handlers.CreateCategoryHandler)
		categoryRoutes.PUT("/:id", auth.AuthMiddleware(), catalogWrite, handlers.UpdateCategoryHandler)
		categoryRoutes.DELETE("/:id", auth.AuthMiddleware(), catalogWrite, handlers.DeleteCategoryHandler)
	}

	courseRoutes := apiV1.Group("/courses")
	{
		courseRoutes.GET("", handlers.ListCoursesHandler)
		courseRoutes.GET("/:id", handlers.GetCourseHandler)
		courseRoutes.POST("", auth.AuthMiddleware(), catalogWrite, handlers.CreateCourseHandler)
		courseRoutes.POST("/with-thumbnail", auth.AuthMiddleware(), catalogWrite, handlers.CreateCourseWithThumbnailHandler)
		courseRoutes.PUT("/:id", auth.AuthMiddleware(), catalogWrite, handlers.UpdateCourseHandler)
		courseRoutes.DELETE("/:id", auth.AuthMiddleware(), catalogWrite, handlers.DeleteCourseHandler)
	}

	moduleRoutes := apiV1.Group("/modules")
	{
		moduleRoutes.GET("", handlers.ListModulesHandler)
		moduleRoutes.GET("/:id", handlers.GetModuleHandler)
		moduleRoutes.POST("", auth.AuthMiddleware(), catalogWrite, handlers.CreateModuleHandler)
		moduleRoutes.PUT("/:id", auth.AuthMiddleware(), catalogWrite, handlers.UpdateModuleHandler)
		moduleRoutes.DELETE("/:id", auth.AuthMiddleware(), catalogWrite, handlers.DeleteModuleHandler)
	}

	lessonRoutes := apiV1.Group("/lessons")
	{
		lessonRoutes.GET("", handlers.ListLessonsHandler)
		lessonRoutes.GET("/:id", handlers.GetLessonHandler)
		lessonRoutes.POST("", auth.AuthMiddleware(), catalogWrite, handlers.CreateLessonHandler)
		lessonRoutes.PUT("/:id", auth.AuthMiddleware(), catalogWrite, handlers.UpdateLessonHandler)
		lessonRoutes.DELETE("/:id", auth.AuthMiddleware(), catalogWrite, handlers.DeleteLessonHandler)
	}

	videoRoutes := apiV1.Group("/videos")
	{
		videoRoutes.GET("", handlers.ListVideosHandler)
		videoRoutes.GET("/paginated", handlers.ListVideosPaginatedHandler)
		videoRoutes.GET("/:id", handlers.GetVideoHandler)
		videoRoutes.POST("/upload", auth.AuthMiddleware(), catalogWrite, handlers.UploadVideoHandler)
		videoRoutes.PUT("/:id", auth.AuthMiddleware(), catalogWrite, handlers.UpdateVideoHandler)
		videoRoutes.DELETE("/:id", auth.AuthMiddleware(), catalogWrite, handlers.DeleteVideoHandler)
	}

	// MFA do usuário autenticado.
	mfaRoutes := apiV1.Group("/users/me/2fa/totp")
	mfaRoutes.Use(auth.AuthMiddleware())
	{
		mfaRoutes.POST("/setup", handlers.SetupTOTPHandler)
		mfaRoutes.POST("/verify", handlers.VerifyTOTPHandler)
		mfaRoutes.POST("/disable", handlers.DisableTOTPHandler)
	}
}
