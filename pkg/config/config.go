package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig detém a configuração da aplicação, carregada uma vez no startup
// e tratada como imutável pelo resto do processo.
type AppConfig struct {
	Port               string
	Environment        string // "development", "staging", "production"
	JWTSecret          string
	JWTTokenLifespan   time.Duration
	ResetTokenLifespan time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// "s3" ou "gcs"
	FileStorageProvider string
	AWSRegion           string
	AWSS3Bucket         string
	AWSSESEmailSender   string
	GCSProjectID        string
	GCSBucketName       string

	FrontendBaseURL string
	AppRootURL      string

	TOTPIssuerName string

	GoogleOAuthClientID     string
	GoogleOAuthClientSecret string
}

var Cfg AppConfig

// LoadConfig carrega a configuração de variáveis de ambiente, com .env como
// conveniência para desenvolvimento local.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado, usando apenas variáveis de ambiente")
	}

	Cfg.Port = getEnv("PORT", "8080")
	Cfg.Environment = getEnv("APP_ENV", "development")

	Cfg.JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Cfg.JWTTokenLifespan = getEnvAsDurationHours("JWT_TOKEN_LIFESPAN_HOURS", 1*time.Hour)
	Cfg.ResetTokenLifespan = getEnvAsDurationMinutes("RESET_TOKEN_LIFESPAN_MINUTES", 15*time.Minute)

	Cfg.DBHost = getEnv("DB_HOST", "localhost")
	Cfg.DBPort = getEnv("DB_PORT", "5432")
	Cfg.DBUser = getEnv("DB_USER", "eduflix")
	Cfg.DBPassword = getEnv("DB_PASSWORD", "")
	Cfg.DBName = getEnv("DB_NAME", "eduflix")
	Cfg.DBSSLMode = getEnv("DB_SSLMODE", "disable")

	Cfg.FileStorageProvider = getEnv("FILE_STORAGE_PROVIDER", "s3")
	Cfg.AWSRegion = getEnv("AWS_REGION", "")
	Cfg.AWSS3Bucket = getEnv("AWS_S3_BUCKET", "")
	Cfg.AWSSESEmailSender = getEnv("AWS_SES_EMAIL_SENDER", "")
	Cfg.GCSProjectID = getEnv("GCS_PROJECT_ID", "")
	Cfg.GCSBucketName = getEnv("GCS_BUCKET_NAME", "")

	Cfg.FrontendBaseURL = getEnv("FRONTEND_BASE_URL", "http://localhost:3001")
	Cfg.AppRootURL = getEnv("APP_ROOT_URL", "http://localhost:8080")

	Cfg.TOTPIssuerName = getEnv("TOTP_ISSUER_NAME", "Eduflix")

	Cfg.GoogleOAuthClientID = getEnv("GOOGLE_OAUTH_CLIENT_ID", "")
	Cfg.GoogleOAuthClientSecret = getEnv("GOOGLE_OAUTH_CLIENT_SECRET", "")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDurationHours(key string, defaultValue time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	hours, err := strconv.Atoi(valStr)
	if err != nil || hours <= 0 {
		log.Printf("Aviso: valor inválido para '%s' (%q), usando default %s", key, valStr, defaultValue)
		return defaultValue
	}
	return time.Duration(hours) * time.Hour
}

func getEnvAsDurationMinutes(key string, defaultValue time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	minutes, err := strconv.Atoi(valStr)
	if err != nil || minutes <= 0 {
		log.Printf("Aviso: valor inválido para '%s' (%q), usando default %s", key, valStr, defaultValue)
		return defaultValue
	}
	return time.Duration(minutes) * time.Minute
}

func init() {
	LoadConfig()
}
