package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config configuration du serveur, chargée depuis l'environnement.
// Un fichier .env local est pris en compte s'il existe.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Intervalle du worker de maintenance (réparation, récupération, expiration)
	MaintenanceInterval time.Duration
}

func LoadConfig() (*Config, error) {
	// .env optionnel en développement
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "dotcircle"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		MaintenanceInterval: 5 * time.Minute,
	}

	if raw := os.Getenv("MAINTENANCE_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("MAINTENANCE_INTERVAL invalide: %w", err)
		}
		cfg.MaintenanceInterval = d
	}

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD manquant")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
