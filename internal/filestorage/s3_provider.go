package filestorage

import (
	"context"
	"fmt"
	"io"

	"eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsGoConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3StorageProvider implements FileStorageProvider using Amazon S3.
type S3StorageProvider struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucketName string
	region     string
}

// InitializeS3Provider initializes the S3 client and configuration.
// Credenciais vêm do ambiente (variáveis ou IAM role), como em qualquer uso
// do SDK v2. Bucket ou região ausentes são erro, não degradação silenciosa.
func InitializeS3Provider() (*S3StorageProvider, error) {
	bucket := config.Cfg.AWSS3Bucket
	region := config.Cfg.AWSRegion

	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET not set")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	sdkConfig, err := awsGoConfig.LoadDefaultConfig(context.TODO(), awsGoConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for S3: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig)

	phxlog.L.Info("Amazon S3 storage provider initialized",
		zap.String("bucket", bucket), zap.String("region", region))

	return &S3StorageProvider{
		client:     s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: bucket,
		region:     region,
	}, nil
}

// UploadFile carrega um arquivo para o S3 e retorna sua URL pública.
// O Upload Manager cuida de multipart uploads para arquivos grandes (vídeos).
func (s *S3StorageProvider) UploadFile(ctx context.Context, objectName string, contentType string, fileContent io.Reader) (string, error) {
	if s.client == nil || s.uploader == nil || s.bucketName == "" {
		return "", fmt.Errorf("S3 provider not initialized or configured correctly")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
		Body:   fileContent,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	uploadOutput, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3 (bucket: %s, key: %s): %w", s.bucketName, objectName, err)
	}

	publicURL := uploadOutput.Location
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, objectName)
	}

	phxlog.L.Info("File uploaded to S3", zap.String("key", objectName))
	return publicURL, nil
}

// DeleteFile remove um objeto do bucket. Objeto inexistente não é erro.
func (s *S3StorageProvider) DeleteFile(ctx context.Context, objectName string) error {
	if s.client == nil || s.bucketName == "" {
		return fmt.Errorf("S3 provider not initialized or configured correctly")
	}
	if objectName == "" {
		return fmt.Errorf("object name cannot be empty for DeleteFile")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q from S3 bucket %q: %w", objectName, s.bucketName, err)
	}

	phxlog.L.Info("File deleted from S3", zap.String("key", objectName))
	return nil
}
