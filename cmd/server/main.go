package main

import (
	"fmt"
	"log"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/database"
	"eduflix/backend/internal/filestorage"
	"eduflix/backend/internal/notifications"
	"eduflix/backend/internal/router"
	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"go.uber.org/zap"
)

func main() {
	// config.Cfg já foi carregado pelo init() do pacote config.
	defer phxlog.Sync()

	if err := auth.InitializeJWT(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	phxlog.L.Info("JWT initialized")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		config.Cfg.DBHost, config.Cfg.DBPort, config.Cfg.DBUser,
		config.Cfg.DBPassword, config.Cfg.DBName, config.Cfg.DBSSLMode)

	if err := database.ConnectDB(dsn); err != nil {
		phxlog.L.Fatal("Failed to connect to database", zap.Error(err))
	}
	phxlog.L.Info("Database connection established")

	if err := database.MigrateDB(); err != nil {
		phxlog.L.Fatal("Failed to run database migrations", zap.Error(err))
	}
	phxlog.L.Info("Database migrations applied")

	// Uploads (avatar, thumbnail, vídeo) fazem parte do contrato da API, então
	// storage não configurado derruba o processo no boot, não no request.
	if err := filestorage.InitFileStorage(); err != nil {
		phxlog.L.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// E-mail é degradável: sem SES configurado, os envios são simulados em log.
	notifications.InitEmailService()

	r := router.SetupRouter(phxlog.L)

	phxlog.L.Info("Starting server", zap.String("port", config.Cfg.Port))
	if err := r.Run(":" + config.Cfg.Port); err != nil {
		phxlog.L.Fatal("Failed to start server", zap.Error(err))
	}
}
