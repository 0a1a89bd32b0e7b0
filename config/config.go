package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	Port          string
	DatabaseURL   string
	SessionSecret []byte
	StudentDomain string
	AdminEmail    string
	AdminPassword string
	CORSOrigins   []string
)

func Init() {
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file loaded: %v", err)
	}

	Port = getEnv("PORT", "4000")

	DatabaseURL = os.Getenv("DATABASE_URL")
	if DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL not set")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		logrus.Fatal("SESSION_SECRET not set")
	}
	SessionSecret = []byte(secret)

	StudentDomain = getEnv("STUDENT_DOMAIN", "nkcswx.cn")
	AdminEmail = getEnv("ADMIN_EMAIL", "admin@example.com")
	AdminPassword = getEnv("ADMIN_PASSWORD", "admin123")

	CORSOrigins = strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
