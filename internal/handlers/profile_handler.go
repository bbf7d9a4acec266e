package handlers

import (
	"errors"
	"fmt"
	"io"
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

const maxAvatarSizeBytes = 2 << 20 // 2MB

var allowedAvatarMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadAvatarHandler recebe o avatar via multipart (campo "file"), grava o
// blob em users/avatars/<uuid>.<ext> e persiste a URL pública no usuário.
func UploadAvatarHandler(c *gin.Context) {
	log := phxlog.L.Named("UploadAvatarHandler")
	userID := c.MustGet("userID").(uuid.UUID)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required (field 'file')"})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is empty"})
		return
	}
	if header.Size > maxAvatarSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Avatar file exceeds the %dMB limit", maxAvatarSizeBytes/(1024*1024))})
		return
	}

	// Detecção de tipo pelos primeiros 512 bytes, não pela extensão.
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read avatar file"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rewind avatar file"})
		return
	}
	mimeType := http.DetectContentType(buffer)
	if !allowedAvatarMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Avatar file type not allowed: %s. Allowed: JPEG, PNG, GIF, WEBP.", mimeType)})
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

	if filestorage.DefaultFileStorageProvider == nil {
		log.Error("Avatar upload attempted without a configured file storage provider",
			zap.String("userID", userID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage provider not configured"})
		return
	}

	objectName := filestorage.AvatarObjectName(header.Filename)
	publicURL, err := filestorage.DefaultFileStorageProvider.UploadFile(c.Request.Context(), objectName, mimeType, file)
	if err != nil {
		log.Error("Failed to upload avatar",
			zap.String("userID", userID.String()),
			zap.String("objectName", objectName),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload avatar"})
		return
	}

	oldAvatarURL := user.AvatarURL
	if err := db.Model(&user).Update("avatar_url", publicURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user avatar"})
		return
	}

	// Limpeza do blob anterior é melhor-esforço: falha não derruba a operação.
	if oldObject := filestorage.ObjectNameFromURL(oldAvatarURL); oldObject != "" {
		if err := filestorage.DefaultFileStorageProvider.DeleteFile(c.Request.Context(), oldObject); err != nil {
			log.Warn("Failed to delete previous avatar blob",
				zap.String("objectName", oldObject),
				zap.Error(err))
		}
	}

	log.Info("Avatar updated",
		zap.String("userID", userID.String()),
		zap.String("objectName", objectName))
	c.JSON(http.StatusOK, gin.H{"avatarUrl": publicURL})
}

// UpdateProfileHandler atualiza nome/e-mail do usuário autenticado via
// multipart, com avatar opcional no campo "avatar".
func UpdateProfileHandler(c *gin.Context) {
	log := phxlog.L.Named("UpdateProfileHandler")
	userID := c.MustGet("userID").(uuid.UUID)

	if err := c.Request.ParseMultipartForm(5 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse multipart form: " + err.Error()})
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

	if name := c.Request.FormValue("name"); name != "" {
		user.Name = name
	}
	if email := c.Request.FormValue("email"); email != "" && email != user.Email {
		var other models.User
		if err := db.Where("email = ? AND id <> ?", email, userID).First(&other).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
			return
		}
		user.Email = email
	}

	file, header, errFile := c.Request.FormFile("avatar")
	if errFile == nil {
		defer file.Close()
		if header.Size == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is empty"})
			return
		}
		if filestorage.DefaultFileStorageProvider == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage provider not configured"})
			return
		}

		buffer := make([]byte, 512)
		if _, err := file.Read(buffer); err != nil && err != io.EOF {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read avatar file"})
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rewind avatar file"})
			return
		}
		mimeType := http.DetectContentType(buffer)
		if !allowedAvatarMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Avatar file type not allowed: %s", mimeType)})
			return
		}

		objectName := filestorage.AvatarObjectName(header.Filename)
		publicURL, err := filestorage.DefaultFileStorageProvider.UploadFile(c.Request.Context(), objectName, mimeType, file)
		if err != nil {
			log.Error("Failed to upload avatar during profile update",
				zap.String("userID", userID.String()),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload avatar"})
			return
		}
		user.AvatarURL = publicURL
	} else if errFile != http.ErrMissingFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process avatar file: " + errFile.Error()})
		return
	}

	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
