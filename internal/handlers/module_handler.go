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

type CourseModulePayload struct {
	Name     string    `json:"name" binding:"required"`
	CourseID uuid.UUID `json:"courseId" binding:"required"`
}

// CreateModuleHandler cria um módulo dentro de um curso existente.
func CreateModuleHandler(c *gin.Context) {
	var payload CourseModulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var course models.Course
	if err := db.First(&course, "id = ?", payload.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	module := models.CourseModule{
		Name:     payload.Name,
		CourseID: payload.CourseID,
	}
	if err := db.Create(&module).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create module"})
		return
	}

	c.JSON(http.StatusCreated, module)
}

// ListModulesHandler lista módulos; `courseId` na query restringe a um curso.
func ListModulesHandler(c *gin.Context) {
	db := database.GetDB()
	query := db.Model(&models.CourseModule{}).Preload("Lessons")

	if courseIDStr := c.Query("courseId"); courseIDStr != "" {
		courseID, err := uuid.Parse(courseIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid courseId format"})
			return
		}
		query = query.Where("course_id = ?", courseID)
	}

	var modules []models.CourseModule
	if err := query.Order("created_at asc").Find(&modules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list modules"})
		return
	}

	c.JSON(http.StatusOK, modules)
}

func GetModuleHandler(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID format"})
		return
	}

	db := database.GetDB()
	var module models.CourseModule
	if err := db.Preload("Lessons").First(&module, "id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch module"})
		return
	}

	c.JSON(http.StatusOK, module)
}

type UpdateModulePayload struct {
	Name string `json:"name" binding:"required"`
}

func UpdateModuleHandler(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID format"})
		return
	}

	var payload UpdateModulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var module models.CourseModule
	if err := db.First(&module, "id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch module"})
		return
	}

	module.Name = payload.Name
	if err := db.Save(&module).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update module"})
		return
	}

	c.JSON(http.StatusOK, module)
}

func DeleteModuleHandler(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID format"})
		return
	}

	db := database.GetDB()
	result := db.Delete(&models.CourseModule{}, "id = ?", moduleID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete module"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Module deleted successfully"})
}
