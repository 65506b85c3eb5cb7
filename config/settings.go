package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings holds the process configuration read from the environment
type Settings struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"` // "mongo" or "memory"
	MongoURI    string `env:"MONGO_URI"`
	MongoURIAlt string `env:"MONGODB_URI"`
	DBName      string `env:"DB_NAME" envDefault:"homelyeats"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET"`

	FirebaseCredentialsBase64 string `env:"FIREBASE_CREDENTIALS_BASE64"`
	FirebaseCredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseProjectID         string `env:"FIREBASE_PROJECT_ID"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"2525"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM"`

	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.MongoURI == "" {
		s.MongoURI = s.MongoURIAlt
	}
	return &s, nil
}

// IsDevelopment reports whether the service runs in a development environment
func (s *Settings) IsDevelopment() bool {
	return s.Env == "development" || s.Env == "dev"
}

// UseMemoryStore reports whether persistence is kept in process
func (s *Settings) UseMemoryStore() bool {
	return s.StoreDriver == "memory"
}

// Validate checks the settings needed to boot
func (s *Settings) Validate() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if !s.UseMemoryStore() && s.MongoURI == "" && !s.IsDevelopment() {
		return fmt.Errorf("MONGO_URI or MONGODB_URI environment variable is required for production")
	}
	return nil
}
