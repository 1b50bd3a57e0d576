package config

import "os"

// Config holds the environment-variable settings for the whole application.
type Config struct {
	Port string

	// CartBackend selects the store: "memory" (default), "firestore", "postgres".
	CartBackend string

	// CartMergePolicy: "id" (default) or "title_category".
	CartMergePolicy string

	// AllowedOrigin is the storefront origin for CORS.
	AllowedOrigin string

	// Firestore
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// Postgres
	DatabaseURL string

	// Telegram notifier. The bot token may instead live in Secret Manager
	// under TelegramTokenSecret (secret resource name).
	TelegramBotToken    string
	TelegramChatID      string
	TelegramTokenSecret string

	// Optional SendGrid email copy of alerts.
	SendGridAPIKey string
	AlertMailFrom  string
	AlertMailTo    string
}

// Load reads environment variables and returns the Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port:            getenvDefault("PORT", "8080"),
		CartBackend:     getenvDefault("CART_BACKEND", "memory"),
		CartMergePolicy: getenvDefault("CART_MERGE_POLICY", "id"),
		AllowedOrigin:   getenvDefault("ALLOWED_ORIGIN", "*"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramTokenSecret: os.Getenv("TELEGRAM_TOKEN_SECRET"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		AlertMailFrom:  os.Getenv("ALERT_MAIL_FROM"),
		AlertMailTo:    os.Getenv("ALERT_MAIL_TO"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
