package handlers

import (
	"errors"
	"net/http"

	"eduflix/backend/internal/database"
	"eduflix/backend/internal/filestorage"
	"eduflix/backend/internal/models"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoListResponse segue o mesmo formato de paginação das listagens de
// usuários.
type VideoListResponse struct {
	Data        []models.Video `json:"data"`
	Total       int64          `json:"total"`
	Pages       int64          `json:"pages"`
	CurrentPage int            `json:"currentPage"`
}

// UploadVideoHandler recebe o arquivo via multipart (campo "file") junto com
// título e descrição, grava o blob e registra o vídeo com a URL resultante.
func UploadVideoHandler(c *gin.Context) {
	log := phxlog.L.Named("UploadVideoHandler")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required (field 'file')"})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is empty"})
		return
	}

	title := c.Request.FormValue("title")
	description := c.Request.FormValue("description")
	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and description are required"})
		return
	}

	if filestorage.DefaultFileStorageProvider == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage provider not configured"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := filestorage.VideoObjectName(header.Filename)
	publicURL, err := filestorage.DefaultFileStorageProvider.UploadFile(c.Request.Context(), objectName, contentType, file)
	if err != nil {
		log.Error("Failed to upload video",
			zap.String("objectName", objectName),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload video"})
		return
	}

	video := models.Video{
		Title:       title,
		Description: description,
		FileURL:     publicURL,
	}

	db := database.GetDB()
	if err := db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video record"})
		return
	}

	log.Info("Video uploaded",
		zap.String("videoID", video.ID.String()),
		zap.String("objectName", objectName))
	c.JSON(http.StatusCreated, video)
}

// ListVideosHandler lista todos os vídeos, sem paginação.
func ListVideosHandler(c *gin.Context) {
	db := database.GetDB()
	var videos []models.Video
	if err := db.Order("created_at desc").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// ListVideosPaginatedHandler lista vídeos com paginação 1-indexada.
func ListVideosPaginatedHandler(c *gin.Context) {
	page, limit := GetPaginationParams(c)

	db := database.GetDB()
	query := db.Model(&models.Video{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count videos"})
		return
	}

	var videos []models.Video
	if err := query.Scopes(PaginateScope(page, limit)).Order("created_at desc").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	c.JSON(http.StatusOK, VideoListResponse{
		Data:        videos,
		Total:       total,
		Pages:       TotalPages(total, limit),
		CurrentPage: page,
	})
}

func GetVideoHandler(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID format"})
		return
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
		return
	}

	c.JSON(http.StatusOK, video)
}

type UpdateVideoPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func UpdateVideoHandler(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID format"})
		return
	}

	var payload UpdateVideoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
		return
	}

	if payload.Title != nil {
		video.Title = *payload.Title
	}
	if payload.Description != nil {
		video.Description = *payload.Description
	}

	if err := db.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideoHandler remove o registro e tenta apagar o blob; falha na
// limpeza é logada e engolida.
func DeleteVideoHandler(c *gin.Context) {
	log := phxlog.L.Named("DeleteVideoHandler")
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID format"})
		return
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
		return
	}

	if err := db.Delete(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}

	deleteBlobBestEffort(c, video.FileURL, "video", log)

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}
