package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the safe2gether backend
type Config struct {
	// Server configuration
	Port string

	// Supabase (PostgREST) configuration
	SupabaseURL     string
	SupabaseAnonKey string

	// Google Maps configuration
	GoogleMapsAPIKey string
	GeocodeCountry   string
	GeocodeLanguage  string

	// SendGrid configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Frontend base URL, used to build links in emails
	FrontendBaseURL string

	// Auth configuration
	JWTSecret     string
	TokenExpiry   time.Duration
	ResetTokenTTL time.Duration

	// Outbound HTTP timeout for Supabase and Google Maps calls
	HTTPTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		SupabaseURL:     getEnv("SUPABASE_URL", "http://localhost:54321"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeCountry:   getEnv("GEOCODE_COUNTRY", "pe"),
		GeocodeLanguage:  getEnv("GEOCODE_LANGUAGE", "es"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@safe2gether.app"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Safe2Gether"),

		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:52802"),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:   getDurationEnv("TOKEN_EXPIRY", 24*time.Hour),
		ResetTokenTTL: getDurationEnv("RESET_TOKEN_TTL", time.Hour),

		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 10*time.Second),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
