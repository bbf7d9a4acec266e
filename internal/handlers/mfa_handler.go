package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"eduflix/backend/internal/database"
	"eduflix/backend/internal/models"
	appConfig "eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SetupTOTPResponse struct {
	Secret               string `json:"secret"`
	QRCode               string `json:"qr_code"` // data URI PNG base64
	Account              string `json:"account"`
	Issuer               string `json:"issuer"`
	BackupCodesGenerated bool   `json:"backup_codes_generated"`
}

// SetupTOTPHandler gera um novo segredo TOTP para o usuário autenticado e
// devolve o QR code de provisionamento. O 2FA só passa a valer depois que
// VerifyTOTPHandler confirma um código válido.
func SetupTOTPHandler(c *gin.Context) {
	log := phxlog.L.Named("SetupTOTPHandler")
	userID := c.MustGet("userID").(uuid.UUID)

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

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      appConfig.Cfg.TOTPIssuerName,
		AccountName: user.Email,
	})
	if err != nil {
		log.Error("Failed to generate TOTP key", zap.String("userID", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate TOTP secret"})
		return
	}

	// Segredo novo sempre desarma o 2FA até a verificação.
	user.TOTPSecret = key.Secret()
	user.IsTOTPEnabled = false
	if err := db.Model(&user).Updates(map[string]interface{}{
		"totp_secret":     user.TOTPSecret,
		"is_totp_enabled": false,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store TOTP secret"})
		return
	}

	pngBytes, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		log.Error("Failed to encode TOTP QR code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, SetupTOTPResponse{
		Secret:               key.Secret(),
		QRCode:               "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		Account:              user.Email,
		Issuer:               appConfig.Cfg.TOTPIssuerName,
		BackupCodesGenerated: false,
	})
}

type VerifyTOTPPayload struct {
	Token string `json:"token" binding:"required"`
}

// VerifyTOTPHandler confirma o código do app autenticador e ativa o 2FA.
func VerifyTOTPHandler(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	var payload VerifyTOTPPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
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

	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP has not been set up for this user"})
		return
	}
	if user.IsTOTPEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP is already enabled"})
		return
	}

	if !totp.Validate(payload.Token, user.TOTPSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid TOTP token"})
		return
	}

	if err := db.Model(&user).Update("is_totp_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable TOTP"})
		return
	}

	phxlog.L.Info("TOTP enabled", zap.String("userID", userID.String()))
	c.JSON(http.StatusOK, gin.H{"message": "TOTP enabled successfully"})
}

type DisableTOTPPayload struct {
	Password string `json:"password" binding:"required"`
}

// DisableTOTPHandler desativa o 2FA mediante reconfirmação da senha.
func DisableTOTPHandler(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	var payload DisableTOTPPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
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

	if !user.IsTOTPEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP is not enabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"totp_secret":     "",
		"is_totp_enabled": false,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable TOTP"})
		return
	}

	phxlog.L.Info("TOTP disabled", zap.String("userID", userID.String()))
	c.JSON(http.StatusOK, gin.H{"message": "TOTP disabled successfully"})
}
