package handlers

import (
	"log"
	"os"
	"testing"
	"time"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/database"
	"eduflix/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestMain prepara o ambiente comum: modo de teste do Gin e JWT.
// Cada teste monta seu próprio sqlmock via setupTestDB.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	os.Setenv("JWT_SECRET_KEY", "handler_test_secret_key")
	if err := auth.InitializeJWT(); err != nil {
		log.Fatalf("Failed to initialize JWT for handler testing: %v", err)
	}

	exitVal := m.Run()

	os.Unsetenv("JWT_SECRET_KEY")
	os.Exit(exitVal)
}

// setupTestDB abre um sqlmock atrás do dialector postgres do GORM e o injeta
// como instância global. TranslateError ligado como em produção, para que os
// testes exercitem o caminho de gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) sqlmock.Sqlmock {
	db, smock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
		},
	)

	mockDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	originalDB := database.DB
	database.SetDB(mockDB)
	t.Cleanup(func() {
		database.DB = originalDB
		db.Close()
	})
	return smock
}

// getRouterWithAuthenticatedContext simula o AuthMiddleware injetando as
// claims do usuário no contexto.
func getRouterWithAuthenticatedContext(userID uuid.UUID, role models.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Set("userEmail", "authed@example.com")
		c.Next()
	})
	return r
}
