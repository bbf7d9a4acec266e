package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"eduflix/backend/internal/database"
	"eduflix/backend/internal/filestorage"
	"eduflix/backend/internal/models"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CoursePayload struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	ProfessorID *uuid.UUID `json:"professorId"`
}

type UpdateCoursePayload struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	ProfessorID *uuid.UUID `json:"professorId"`
}

// CreateCourseHandler cria um curso sem thumbnail (JSON puro).
func CreateCourseHandler(c *gin.Context) {
	var payload CoursePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	course := models.Course{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		CategoryID:  payload.CategoryID,
		ProfessorID: payload.ProfessorID,
	}

	db := database.GetDB()
	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// CreateCourseWithThumbnailHandler cria um curso via multipart: os campos do
// curso vêm como JSON no campo "data" e a imagem no campo "thumbnail".
func CreateCourseWithThumbnailHandler(c *gin.Context) {
	log := phxlog.L.Named("CreateCourseWithThumbnailHandler")

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse multipart form: " + err.Error()})
		return
	}

	var payload CoursePayload
	dataField := c.Request.FormValue("data")
	if dataField == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course data is required (field 'data')"})
		return
	}
	if err := json.Unmarshal([]byte(dataField), &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course data JSON: " + err.Error()})
		return
	}
	if payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course title is required"})
		return
	}

	course := models.Course{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		CategoryID:  payload.CategoryID,
		ProfessorID: payload.ProfessorID,
	}

	file, header, errFile := c.Request.FormFile("thumbnail")
	if errFile == nil {
		defer file.Close()
		publicURL, err := uploadCourseThumbnail(c, file, header.Filename, header.Size)
		if err != nil {
			log.Error("Failed to upload course thumbnail", zap.Error(err))
			return // uploadCourseThumbnail já respondeu
		}
		course.ThumbnailURL = publicURL
	} else if errFile != http.ErrMissingFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process thumbnail file: " + errFile.Error()})
		return
	}

	db := database.GetDB()
	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCoursesHandler lista cursos com categoria, professor e módulos
// pré-carregados.
func ListCoursesHandler(c *gin.Context) {
	db := database.GetDB()
	var courses []models.Course
	err := db.Preload("Category").
		Preload("Professor").
		Preload("Modules").
		Order("title asc").
		Find(&courses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list courses"})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func GetCourseHandler(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID format"})
		return
	}

	db := database.GetDB()
	var course models.Course
	err = db.Preload("Category").
		Preload("Professor").
		Preload("Modules.Lessons").
		First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourseHandler aplica atualização parcial via multipart. Um novo
// thumbnail substitui o anterior; a falha ao apagar o blob antigo é apenas
// logada — o registro já aponta para o novo.
func UpdateCourseHandler(c *gin.Context) {
	log := phxlog.L.Named("UpdateCourseHandler")
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID format"})
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse multipart form: " + err.Error()})
		return
	}

	db := database.GetDB()
	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	if dataField := c.Request.FormValue("data"); dataField != "" {
		var payload UpdateCoursePayload
		if err := json.Unmarshal([]byte(dataField), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course data JSON: " + err.Error()})
			return
		}
		if payload.Title != nil {
			course.Title = *payload.Title
		}
		if payload.Description != nil {
			course.Description = *payload.Description
		}
		if payload.Price != nil {
			course.Price = *payload.Price
		}
		if payload.CategoryID != nil {
			course.CategoryID = payload.CategoryID
		}
		if payload.ProfessorID != nil {
			course.ProfessorID = payload.ProfessorID
		}
	}

	oldThumbnailURL := ""
	file, header, errFile := c.Request.FormFile("thumbnail")
	if errFile == nil {
		defer file.Close()
		publicURL, err := uploadCourseThumbnail(c, file, header.Filename, header.Size)
		if err != nil {
			log.Error("Failed to upload replacement thumbnail",
				zap.String("courseID", courseID.String()), zap.Error(err))
			return
		}
		oldThumbnailURL = course.ThumbnailURL
		course.ThumbnailURL = publicURL
	} else if errFile != http.ErrMissingFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process thumbnail file: " + errFile.Error()})
		return
	}

	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}

	deleteBlobBestEffort(c, oldThumbnailURL, "thumbnail", log)

	c.JSON(http.StatusOK, course)
}

// DeleteCourseHandler remove o curso; a limpeza do thumbnail é melhor-esforço.
func DeleteCourseHandler(c *gin.Context) {
	log := phxlog.L.Named("DeleteCourseHandler")
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID format"})
		return
	}

	db := database.GetDB()
	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	if err := db.Delete(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	deleteBlobBestEffort(c, course.ThumbnailURL, "thumbnail", log)

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// uploadCourseThumbnail valida e grava o thumbnail, respondendo o erro HTTP
// por conta própria quando falha.
func uploadCourseThumbnail(c *gin.Context, file io.ReadSeeker, filename string, size int64) (string, error) {
	if size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thumbnail file is empty"})
		return "", errors.New("empty thumbnail file")
	}
	if size > maxThumbnailSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thumbnail file exceeds the " + strconv.Itoa(maxThumbnailSizeBytes/(1024*1024)) + "MB limit"})
		return "", errors.New("thumbnail too large")
	}

	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read thumbnail file"})
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rewind thumbnail file"})
		return "", err
	}
	mimeType := http.DetectContentType(buffer)
	if !allowedAvatarMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thumbnail file type not allowed: " + mimeType})
		return "", errors.New("thumbnail mime type not allowed")
	}

	if filestorage.DefaultFileStorageProvider == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage provider not configured"})
		return "", errors.New("file storage provider not configured")
	}

	objectName := filestorage.ThumbnailObjectName(filename)
	publicURL, err := filestorage.DefaultFileStorageProvider.UploadFile(c.Request.Context(), objectName, mimeType, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload thumbnail"})
		return "", err
	}
	return publicURL, nil
}

const maxThumbnailSizeBytes = 5 << 20 // 5MB

// deleteBlobBestEffort apaga o objeto apontado pela URL, se houver; falha é
// logada e engolida.
func deleteBlobBestEffort(c *gin.Context, publicURL, kind string, log *zap.Logger) {
	if publicURL == "" || filestorage.DefaultFileStorageProvider == nil {
		return
	}
	objectName := filestorage.ObjectNameFromURL(publicURL)
	if objectName == "" {
		return
	}
	if err := filestorage.DefaultFileStorageProvider.DeleteFile(c.Request.Context(), objectName); err != nil {
		log.Warn("Failed to delete "+kind+" blob",
			zap.String("objectName", objectName),
			zap.Error(err))
	}
}
