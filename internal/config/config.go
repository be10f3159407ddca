package config

import "os"

// Config collects the environment the API needs at boot. The signature
// encryption key is handed to the vault and crypto components explicitly so
// tests can run with throwaway keys.
type Config struct {
	DatabaseURL string
	HTTPPort    string

	// Root directory for uploaded PDFs, signature images and signed outputs.
	MediaRoot string

	// Base64 urlsafe Fernet key protecting saved signatures at rest.
	SignatureEncryptionKey string

	FrontendURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

func Load() Config {
	return Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		HTTPPort:               getenv("HTTP_PORT", "8080"),
		MediaRoot:              getenv("MEDIA_ROOT", "media"),
		SignatureEncryptionKey: os.Getenv("SIGNATURE_ENCRYPTION_KEY"),
		FrontendURL:            getenv("FRONTEND_URL", "http://localhost:3000"),
		SMTPHost:               os.Getenv("EMAIL_HOST"),
		SMTPPort:               getenv("EMAIL_PORT", "587"),
		SMTPUsername:           os.Getenv("EMAIL_HOST_USER"),
		SMTPPassword:           os.Getenv("EMAIL_HOST_PASSWORD"),
		FromEmail:              getenv("DEFAULT_FROM_EMAIL", "noreply@wolofsign.local"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
