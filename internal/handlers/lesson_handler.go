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

type LessonPayload struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoUrl" binding:"required"`
	ModuleID    uuid.UUID `json:"moduleId" binding:"required"`
}

// CreateLessonHandler cria uma aula dentro de um módulo existente.
func CreateLessonHandler(c *gin.Context) {
	var payload LessonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var module models.CourseModule
	if err := db.First(&module, "id = ?", payload.ModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch module"})
		return
	}

	lesson := models.Lesson{
		Title:       payload.Title,
		Description: payload.Description,
		VideoURL:    payload.VideoURL,
		ModuleID:    payload.ModuleID,
	}
	if err := db.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lesson"})
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// ListLessonsHandler lista aulas; `moduleId` na query restringe a um módulo.
func ListLessonsHandler(c *gin.Context) {
	db := database.GetDB()
	query := db.Model(&models.Lesson{})

	if moduleIDStr := c.Query("moduleId"); moduleIDStr != "" {
		moduleID, err := uuid.Parse(moduleIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid moduleId format"})
			return
		}
		query = query.Where("module_id = ?", moduleID)
	}

	var lessons []models.Lesson
	if err := query.Order("created_at asc").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list lessons"})
		return
	}

	c.JSON(http.StatusOK, lessons)
}

func GetLessonHandler(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID format"})
		return
	}

	db := database.GetDB()
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lesson"})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

type UpdateLessonPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	VideoURL    *string `json:"videoUrl"`
}

func UpdateLessonHandler(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID format"})
		return
	}

	var payload UpdateLessonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lesson"})
		return
	}

	if payload.Title != nil {
		lesson.Title = *payload.Title
	}
	if payload.Description != nil {
		lesson.Description = *payload.Description
	}
	if payload.VideoURL != nil {
		lesson.VideoURL = *payload.VideoURL
	}

	if err := db.Save(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lesson"})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func DeleteLessonHandler(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID format"})
		return
	}

	db := database.GetDB()
	result := db.Delete(&models.Lesson{}, "id = ?", lessonID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lesson"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}
