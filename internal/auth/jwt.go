package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"eduflix/backend/internal/models"
	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var jwtKey []byte

const (
	issuerName        = "eduflix-backend"
	resetTokenPurpose = "password_reset"
)

// Claims é o payload do token de sessão. Subject carrega o id do usuário.
type Claims struct {
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	AvatarURL string          `json:"avatarUrl"`
	jwt.RegisteredClaims
}

// ResetClaims é o payload do token de reset de senha. O campo Purpose impede
// que um token de sessão seja aceito no fluxo de reset (e vice-versa).
type ResetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// InitializeJWT loads the JWT secret key from environment variables.
func InitializeJWT() error {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}
	jwtKey = []byte(secret)
	return nil
}

// GenerateToken emite um token de sessão assinado para o usuário.
// A expiração padrão é de 1 hora (config.Cfg.JWTTokenLifespan).
func GenerateToken(user *models.User) (string, error) {
	if len(jwtKey) == 0 {
		return "", fmt.Errorf("JWT secret key not initialized, call InitializeJWT() first")
	}

	lifespan := config.Cfg.JWTTokenLifespan
	if lifespan == 0 {
		lifespan = 1 * time.Hour
	}

	claims := &Claims{
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuerName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken valida um token de sessão e retorna suas claims.
func ValidateToken(tokenString string) (*Claims, error) {
	if len(jwtKey) == 0 {
		return nil, fmt.Errorf("JWT secret key not initialized")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GenerateResetToken emite o token de reset de senha, válido por 15 minutos
// (config.Cfg.ResetTokenLifespan) e vinculado ao id do usuário.
func GenerateResetToken(userID uuid.UUID) (string, error) {
	if len(jwtKey) == 0 {
		return "", fmt.Errorf("JWT secret key not initialized, call InitializeJWT() first")
	}

	lifespan := config.Cfg.ResetTokenLifespan
	if lifespan == 0 {
		lifespan = 15 * time.Minute
	}

	claims := &ResetClaims{
		Purpose: resetTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuerName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", fmt.Errorf("error signing reset token: %w", err)
	}
	return tokenString, nil
}

// ValidateResetToken valida um token de reset e retorna o id do usuário.
// Qualquer falha (expirado, malformado, assinatura errada, propósito errado)
// resulta em erro; o chamador responde com um único 401 sem distinguir a causa.
func ValidateResetToken(tokenString string) (uuid.UUID, error) {
	if len(jwtKey) == 0 {
		return uuid.Nil, fmt.Errorf("JWT secret key not initialized")
	}

	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("error parsing reset token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid reset token")
	}
	if claims.Purpose != resetTokenPurpose {
		return uuid.Nil, fmt.Errorf("token is not a password reset token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject in reset token: %w", err)
	}
	return userID, nil
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
// It checks for a valid JWT in the Authorization header (Bearer token).
// If valid, it sets the user's claims in the Gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			// A causa real fica só no log; a resposta é sempre a mesma.
			phxlog.L.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", userID)
		c.Set("userName", claims.Name)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)
		c.Set("userAvatarURL", claims.AvatarURL)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRoles retorna um middleware que exige um dos papéis informados.
// Deve ser encadeado depois de AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, ok := c.Get("userRole")
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role information missing from token"})
			return
		}
		role := roleValue.(models.UserRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient privileges"})
	}
}
