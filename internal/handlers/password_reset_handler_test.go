package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/models"
	"eduflix/backend/pkg/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestForgotPasswordHandler_UnknownEmail(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/forgot-password", ForgotPasswordHandler)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rr := postJSON(router, "/forgot-password", ForgotPasswordPayload{Email: "nobody@example.com"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var errorResponse map[string]string
	json.Unmarshal(rr.Body.Bytes(), &errorResponse)
	assert.Equal(t, "User not found", errorResponse["error"])

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestForgotPasswordHandler_Success(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/forgot-password", ForgotPasswordHandler)

	userID := uuid.New()
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(userID, "Forgetful User", "forgetful@example.com"))

	// Sem notifier configurado o envio é simulado em log, então o handler
	// responde 200 mesmo em ambiente de teste.
	rr := postJSON(router, "/forgot-password", ForgotPasswordPayload{Email: "forgetful@example.com"})

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Password reset email sent")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestForgotPasswordHandler_InvalidPayload(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/forgot-password", ForgotPasswordHandler)

	rr := postJSON(router, "/forgot-password", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResetPasswordHandler_Success(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/reset-password", ResetPasswordHandler)

	userID := uuid.New()
	token, err := auth.GenerateResetToken(userID)
	assert.NoError(t, err)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}).
			AddRow(userID, "reset@example.com", "oldhash"))

	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	smock.ExpectCommit()

	rr := postJSON(router, "/reset-password", ResetPasswordPayload{Token: token, Password: "newsecret123"})

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Password has been reset successfully")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestResetPasswordHandler_ExpiredToken(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/reset-password", ResetPasswordHandler)

	originalLifespan := config.Cfg.ResetTokenLifespan
	config.Cfg.ResetTokenLifespan = -1 * time.Minute
	token, err := auth.GenerateResetToken(uuid.New())
	config.Cfg.ResetTokenLifespan = originalLifespan
	assert.NoError(t, err)

	rr := postJSON(router, "/reset-password", ResetPasswordPayload{Token: token, Password: "newsecret123"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

func TestResetPasswordHandler_GarbageToken(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/reset-password", ResetPasswordHandler)

	rr := postJSON(router, "/reset-password", ResetPasswordPayload{Token: "not.a.jwt", Password: "newsecret123"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

// Um token de sessão não serve para redefinir senha.
func TestResetPasswordHandler_RejectsSessionToken(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/reset-password", ResetPasswordHandler)

	sessionToken, err := auth.GenerateToken(&models.User{ID: uuid.New(), Email: "cross@example.com", Role: models.RoleAluno})
	assert.NoError(t, err)

	rr := postJSON(router, "/reset-password", ResetPasswordPayload{Token: sessionToken, Password: "newsecret123"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

func TestResetPasswordHandler_PasswordTooShort(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/reset-password", ResetPasswordHandler)

	token, _ := auth.GenerateResetToken(uuid.New())
	rr := postJSON(router, "/reset-password", ResetPasswordPayload{Token: token, Password: "12345"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
