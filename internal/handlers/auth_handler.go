package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/database"
	"eduflix/backend/internal/models"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterPayload struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"omitempty,oneof=admin professor aluno"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginPayload struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	AvatarURL string `json:"avatarUrl"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// RegisterHandler cria um novo usuário com senha bcrypt.
// E-mail duplicado responde 409; a verificação prévia existe só para dar
// a mensagem certa — quem decide de verdade é o índice único do banco.
func RegisterHandler(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	role := payload.Role
	if role == "" {
		role = models.RoleAluno
	}

	db := database.GetDB()
	var existing models.User
	if err := db.Where("email = ?", payload.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing user"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := models.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		AvatarURL:    "",
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Dois registros concorrentes passaram pelo check acima; o
			// índice único resolve a corrida.
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    newUserResponse(user),
	})
}

// LoginHandler autentica por e-mail/senha e emite o token de sessão.
// "Usuário inexistente" e "senha errada" produzem exatamente a mesma
// resposta para não revelar qual metade da credencial falhou.
func LoginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", payload.Email).First(&user).Error; err != nil {
		phxlog.L.Debug("Login failed: user not found", zap.String("email", payload.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		phxlog.L.Debug("Login failed: password mismatch", zap.String("email", payload.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.IsTOTPEnabled {
		// Não emitir o token ainda; o frontend coleta o código TOTP e
		// finaliza em /auth/login/2fa/verify.
		c.JSON(http.StatusOK, gin.H{
			"2fa_required": true,
			"user_id":      user.ID.String(),
			"message":      "Password verified. Please provide TOTP token.",
		})
		return
	}

	issueSession(c, &user)
}

// GoogleLoginHandler é o login federado: o frontend completa o fluxo Google
// e envia o perfil resultante. Contas ausentes são provisionadas como aluno.
func GoogleLoginHandler(c *gin.Context) {
	var payload GoogleLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	user, err := FindOrProvisionGoogleUser(payload.Name, payload.Email, payload.AvatarURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision federated user"})
		return
	}

	if user.IsTOTPEnabled {
		c.JSON(http.StatusOK, gin.H{
			"2fa_required": true,
			"user_id":      user.ID.String(),
			"message":      "Identity verified. Please provide TOTP token.",
		})
		return
	}

	issueSession(c, user)
}

// FindOrProvisionGoogleUser busca a conta pelo e-mail e, se ausente, cria uma
// com papel aluno e senha aleatória nunca comunicada — a conta continua
// compatível com o modelo normal de credenciais. Logins repetidos não
// atualizam nome nem avatar: o perfil local é a fonte de verdade.
func FindOrProvisionGoogleUser(name, email, avatarURL string) (*models.User, error) {
	db := database.GetDB()

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(randomBytes)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAluno,
		AvatarURL:    avatarURL,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Corrida com outro login federado do mesmo e-mail; a conta
			// existe agora, então basta buscá-la.
			if ferr := db.Where("email = ?", email).First(&user).Error; ferr == nil {
				return &user, nil
			}
		}
		return nil, err
	}
	return &user, nil
}

type LoginVerifyTOTPPayload struct {
	UserID string `json:"user_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

// LoginVerifyTOTPHandler finaliza o login de usuários com TOTP habilitado.
func LoginVerifyTOTPHandler(c *gin.Context) {
	var payload LoginVerifyTOTPPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	userUUID, err := uuid.Parse(payload.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UserID format"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userUUID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsTOTPEnabled || user.TOTPSecret == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "TOTP is not enabled for this user"})
		return
	}

	if !totp.Validate(payload.Token, user.TOTPSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid TOTP token"})
		return
	}

	issueSession(c, &user)
}

func issueSession(c *gin.Context, user *models.User) {
	tokenString, err := auth.GenerateToken(user)
	if err != nil {
		phxlog.L.Error("Failed to generate session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: tokenString,
		User:        newUserResponse(*user),
	})
}
