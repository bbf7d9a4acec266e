package filestorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStorageProvider define as operações de blob store que a aplicação usa.
// UploadFile retorna a URL pública do objeto gravado.
type FileStorageProvider interface {
	UploadFile(ctx context.Context, objectName string, contentType string, fileContent io.Reader) (publicURL string, err error)
	DeleteFile(ctx context.Context, objectName string) error
}

// DefaultFileStorageProvider holds the initialized default provider.
var DefaultFileStorageProvider FileStorageProvider

// InitFileStorage inicializa o provider configurado em FILE_STORAGE_PROVIDER.
// Configuração ausente é fatal: uploads fazem parte do contrato da API.
func InitFileStorage() error {
	providerType := config.Cfg.FileStorageProvider
	phxlog.L.Info("Initializing file storage", zap.String("provider_type", providerType))

	var err error
	switch providerType {
	case "s3":
		DefaultFileStorageProvider, err = InitializeS3Provider()
	case "gcs":
		DefaultFileStorageProvider, err = InitializeGCSProvider()
	default:
		return fmt.Errorf("unsupported FILE_STORAGE_PROVIDER %q (expected \"s3\" or \"gcs\")", providerType)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage provider: %w", providerType, err)
	}

	phxlog.L.Info("File storage provider initialized", zap.String("provider_type", providerType))
	return nil
}

// AvatarObjectName monta a chave de avatar no padrão users/avatars/<uuid>.<ext>.
func AvatarObjectName(originalFilename string) string {
	return prefixedObjectName("users/avatars", originalFilename)
}

// ThumbnailObjectName monta a chave de thumbnail de curso.
func ThumbnailObjectName(originalFilename string) string {
	return prefixedObjectName("courses/thumbnails", originalFilename)
}

// VideoObjectName monta a chave de vídeo, preservando o nome original.
func VideoObjectName(originalFilename string) string {
	return fmt.Sprintf("videos/%s-%s", uuid.NewString(), filepath.Base(originalFilename))
}

// ObjectNameFromURL extrai a chave do objeto a partir de uma URL pública
// gerada pelos providers (S3 ou GCS). Retorna "" quando a URL não aponta
// para o bucket configurado — nesse caso não há o que apagar.
func ObjectNameFromURL(publicURL string) string {
	if publicURL == "" {
		return ""
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	// GCS: https://storage.googleapis.com/<bucket>/<object>
	if u.Host == "storage.googleapis.com" {
		if config.Cfg.GCSBucketName != "" && strings.HasPrefix(path, config.Cfg.GCSBucketName+"/") {
			return strings.TrimPrefix(path, config.Cfg.GCSBucketName+"/")
		}
		return ""
	}
	// S3 virtual-hosted: https://<bucket>.s3.<region>.amazonaws.com/<object>
	if config.Cfg.AWSS3Bucket != "" && strings.HasPrefix(u.Host, config.Cfg.AWSS3Bucket+".") {
		return path
	}
	return ""
}

func prefixedObjectName(prefix, originalFilename string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalFilename), ".")
	if ext == "" {
		return fmt.Sprintf("%s/%s", prefix, uuid.NewString())
	}
	return fmt.Sprintf("%s/%s.%s", prefix, uuid.NewString(), ext)
}
