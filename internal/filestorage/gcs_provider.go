package filestorage

import (
	"context"
	"fmt"
	"io"

	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSStorageProvider implements FileStorageProvider using Google Cloud Storage.
type GCSStorageProvider struct {
	client     *storage.Client
	bucketName string
}

// InitializeGCSProvider initializes the Google Cloud Storage client.
// GOOGLE_APPLICATION_CREDENTIALS é lido automaticamente pela biblioteca;
// em ambiente GCP a service account associada é usada.
func InitializeGCSProvider() (*GCSStorageProvider, error) {
	projectID := config.Cfg.GCSProjectID
	bucketName := config.Cfg.GCSBucketName

	if projectID == "" {
		return nil, fmt.Errorf("GCS_PROJECT_ID not set")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET_NAME not set")
	}

	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud Storage client: %w", err)
	}

	phxlog.L.Info("Google Cloud Storage provider initialized",
		zap.String("projectID", projectID), zap.String("bucketName", bucketName))

	return &GCSStorageProvider{client: client, bucketName: bucketName}, nil
}

// UploadFile carrega um arquivo para o GCS e retorna sua URL pública.
func (g *GCSStorageProvider) UploadFile(ctx context.Context, objectName string, contentType string, fileContent io.Reader) (string, error) {
	if g.client == nil || g.bucketName == "" {
		return "", fmt.Errorf("GCS provider not initialized or configured correctly")
	}

	obj := g.client.Bucket(g.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	if contentType != "" {
		wc.ContentType = contentType
	}

	if _, err := io.Copy(wc, fileContent); err != nil {
		return "", fmt.Errorf("failed to copy file content to GCS object writer: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS object writer: %w", err)
	}

	phxlog.L.Info("File uploaded to GCS",
		zap.String("bucket", g.bucketName), zap.String("objectName", objectName))
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, objectName), nil
}

// DeleteFile remove um arquivo do GCS. Objeto inexistente não é erro.
func (g *GCSStorageProvider) DeleteFile(ctx context.Context, objectName string) error {
	if g.client == nil || g.bucketName == "" {
		return fmt.Errorf("GCS provider not initialized or configured correctly")
	}
	if objectName == "" {
		return fmt.Errorf("object name cannot be empty for DeleteFile")
	}

	obj := g.client.Bucket(g.bucketName).Object(objectName)
	if err := obj.Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("failed to delete object %q from GCS bucket %q: %w", objectName, g.bucketName, err)
	}

	phxlog.L.Info("File deleted from GCS",
		zap.String("bucket", g.bucketName), zap.String("objectName", objectName))
	return nil
}
