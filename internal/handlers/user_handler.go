package handlers

import (
	"errors"
	"net/http"

	"eduflix/backend/internal/database"
	"eduflix/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserListResponse segue o formato de paginação da API:
// data, total pós-filtro, pages = ceil(total/limit) e a página corrente.
type UserListResponse struct {
	Data        []UserResponse `json:"data"`
	Total       int64          `json:"total"`
	Pages       int64          `json:"pages"`
	CurrentPage int            `json:"currentPage"`
}

// ListUsersHandler lista usuários com paginação 1-indexada.
// `search` casa substring (case-insensitive) em nome OU e-mail; `role` filtra
// por igualdade. Os dois filtros combinam por AND.
func ListUsersHandler(c *gin.Context) {
	page, limit := GetPaginationParams(c)
	search := c.Query("search")
	role := c.Query("role")

	db := database.GetDB()
	query := db.Model(&models.User{})

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	var users []models.User
	if err := query.Scopes(PaginateScope(page, limit)).Order("name asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Data:        newListUserResponse(users),
		Total:       total,
		Pages:       TotalPages(total, limit),
		CurrentPage: page,
	})
}

// GetUserHandler retorna um usuário pelo id, sem o campo de senha.
func GetUserHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
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

	c.JSON(http.StatusOK, newUserResponse(user))
}

type UpdateUserPayload struct {
	Name      *string          `json:"name"`
	Email     *string          `json:"email" binding:"omitempty,email"`
	Role      *models.UserRole `json:"role" binding:"omitempty,oneof=admin professor aluno"`
	AvatarURL *string          `json:"avatarUrl"`
}

// UpdateUserHandler aplica uma atualização parcial sobre o usuário.
// Admins atualizam qualquer conta; os demais só a própria — e não podem
// trocar o próprio papel.
func UpdateUserHandler(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	actingID := c.MustGet("userID").(uuid.UUID)
	actingRole := c.MustGet("userRole").(models.UserRole)
	if actingRole != models.RoleAdmin && actingID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient privileges"})
		return
	}

	var payload UpdateUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if payload.Role != nil && actingRole != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can change roles"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	if payload.Email != nil && *payload.Email != user.Email {
		var other models.User
		if err := db.Where("email = ? AND id <> ?", *payload.Email, targetID).First(&other).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
			return
		}
		user.Email = *payload.Email
	}
	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.AvatarURL != nil {
		user.AvatarURL = *payload.AvatarURL
	}

	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteUserHandler remove o registro do usuário. Somente admins.
func DeleteUserHandler(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	db := database.GetDB()
	result := db.Delete(&models.User{}, "id = ?", targetID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
