package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

var loadEnvOnce sync.Once

// Config returns the value of an environment variable, loading .env on first use.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

type PayPalConfig struct {
	Mode     string
	ClientID string
	Secret   string
	Currency string
}

func (p PayPalConfig) Configured() bool {
	return p.ClientID != "" && p.Secret != ""
}

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Configured() bool {
	return c.URL != "" || (c.CloudName != "" && c.APIKey != "" && c.APISecret != "")
}

type EmailConfig struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

type EventsConfig struct {
	SQSQueueURL  string
	AWSRegion    string
	AWSAccessKey string
	AWSSecret    string
}

type AppConfig struct {
	Env               string
	Port              string
	DatabaseURL       string
	ClientURL         string
	JWTSecret         string
	JWTExpiry         time.Duration
	GatewayTimeout    time.Duration
	UploadDir         string
	ReconcileSchedule string

	PayPal     PayPalConfig
	Cloudinary CloudinaryConfig
	Email      EmailConfig
	Events     EventsConfig
}

const devClientURL = "http://localhost:5173"

// Load builds the application configuration from the environment.
func Load() *AppConfig {
	cfg := &AppConfig{
		Env:               valueOr("APP_ENV", "development"),
		Port:              valueOr("PORT", "5011"),
		DatabaseURL:       Config("DATABASE_URL"),
		ClientURL:         strings.TrimRight(Config("CLIENT_URL"), "/"),
		JWTSecret:         Config("JWT_SECRET"),
		JWTExpiry:         Duration("JWT_EXPIRY", 120*time.Minute),
		GatewayTimeout:    Duration("GATEWAY_TIMEOUT", 30*time.Second),
		UploadDir:         valueOr("UPLOAD_DIR", "uploads"),
		ReconcileSchedule: valueOr("RECONCILE_SCHEDULE", "*/1 * * * *"),
		PayPal: PayPalConfig{
			Mode:     strings.ToLower(valueOr("PAYPAL_MODE", "sandbox")),
			ClientID: Config("PAYPAL_CLIENT_ID"),
			Secret:   Config("PAYPAL_SECRET_ID"),
			Currency: strings.ToUpper(valueOr("PAYPAL_CURRENCY", "USD")),
		},
		Cloudinary: CloudinaryConfig{
			URL:       Config("CLOUDINARY_URL"),
			CloudName: Config("CLOUDINARY_CLOUD_NAME"),
			APIKey:    Config("CLOUDINARY_API_KEY"),
			APISecret: Config("CLOUDINARY_API_SECRET"),
			Folder:    valueOr("CLOUDINARY_FOLDER", "course-uploads"),
		},
		Email: EmailConfig{
			APIKey:      Config("BREVO_API_KEY"),
			SenderEmail: Config("EMAIL_SENDER"),
			SenderName:  Config("EMAIL_SENDER_NAME"),
		},
		Events: EventsConfig{
			SQSQueueURL:  Config("SQS_QUEUE_URL"),
			AWSRegion:    Config("AWS_REGION"),
			AWSAccessKey: Config("AWS_ACCESS_KEY"),
			AWSSecret:    Config("AWS_SECRET"),
		},
	}

	if cfg.ClientURL == "" && cfg.IsDevelopment() {
		cfg.ClientURL = devClientURL
	}

	return cfg
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Development reports whether APP_ENV selects development, the default.
func Development() bool {
	return valueOr("APP_ENV", "development") == "development"
}

func valueOr(key, fallback string) string {
	if v := strings.TrimSpace(Config(key)); v != "" {
		return v
	}
	return fallback
}

// Duration parses a duration variable, falling back on empty or invalid values.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(Config(key))
	if raw == "" {
		return fallback
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️ Invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}
