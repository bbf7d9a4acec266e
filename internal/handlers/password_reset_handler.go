package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/database"
	"eduflix/backend/internal/models"
	"eduflix/backend/internal/notifications"
	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordHandler emite um token de reset de 15 minutos e envia o link
// por e-mail. A resposta revela se o e-mail existe (404); o colapso de
// respostas vale para login e reset-password, não aqui. Ver DESIGN.md.
func ForgotPasswordHandler(c *gin.Context) {
	log := phxlog.L.Named("ForgotPasswordHandler")
	var payload ForgotPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", payload.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	token, err := auth.GenerateResetToken(user.ID)
	if err != nil {
		log.Error("Failed to generate password reset token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.Cfg.FrontendBaseURL, token)

	bodyHTML := fmt.Sprintf(`
        <p>Olá!</p>
        <p>Você solicitou a redefinição da senha. Clique no link abaixo para redefinir:</p>
        <p><a href="%s">Redefinir senha</a></p>
        <p>O link é válido por 15 minutos. Se você não fez essa solicitação, ignore este e-mail.</p>
    `, resetLink)
	bodyText := fmt.Sprintf("Você solicitou a redefinição da senha. Acesse: %s (válido por 15 minutos)", resetLink)

	if err := notifications.SendEmailNotification(c.Request.Context(), user.Email, "Recuperação de Senha", bodyHTML, bodyText); err != nil {
		log.Error("Failed to send password reset email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send password reset email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

type ResetPasswordPayload struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPasswordHandler troca a senha mediante um token de reset válido.
// Expirado, adulterado ou malformado: tudo colapsa no mesmo 401.
func ResetPasswordHandler(c *gin.Context) {
	log := phxlog.L.Named("ResetPasswordHandler")
	var payload ResetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	userID, err := auth.ValidateResetToken(payload.Token)
	if err != nil {
		log.Debug("Rejected password reset token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process new password"})
		return
	}

	if err := db.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
