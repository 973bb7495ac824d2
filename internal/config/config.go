package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Network sources
const (
	NetworkSourceEmbedded = "embedded"
	NetworkSourceFile     = "file"
	NetworkSourceDatabase = "database"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration (only used when the network is read from Postgres)
	Database DatabaseConfig

	// Network model configuration
	Network NetworkConfig

	// Fallback planner cost model
	Planner PlannerConfig

	// Live planner configuration
	LivePlanner LivePlannerConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port             string
	Environment      string // development, staging, production
	LogLevel         string // debug, info, warn, error
	EnableRequestLog bool
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// NetworkConfig says where the station list comes from
type NetworkConfig struct {
	Source       string // embedded, file, database
	StationsFile string
	Timezone     string
}

// PlannerConfig holds the tunable constants of the offline planner
type PlannerConfig struct {
	WalkSpeedMPS           float64
	TransitSpeedMPS        float64
	TransitThresholdMeters float64
	ShuttleMode            string // always, never, event-days
	ShuttleEventDates      []string
	DestinationName        string
	DestinationLat         float64
	DestinationLon         float64
	HasDestination         bool // true when DESTINATION_LAT/LON override the network's destination
}

// LivePlannerConfig holds the OpenTripPlanner-compatible upstream configuration
type LivePlannerConfig struct {
	URL     string // empty disables the live planner
	Timeout time.Duration
}

// Enabled reports whether a live planner is configured
func (c LivePlannerConfig) Enabled() bool {
	return c.URL != ""
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := FromEnv()

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv reads the configuration from the process environment without validating it
func FromEnv() *Config {
	_, hasLat := os.LookupEnv("DESTINATION_LAT")
	_, hasLon := os.LookupEnv("DESTINATION_LON")

	source := NetworkSourceEmbedded
	if os.Getenv("STATIONS_FILE") != "" {
		source = NetworkSourceFile
	}

	return &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			Environment:      getEnv("ENVIRONMENT", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 5),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 2),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Network: NetworkConfig{
			Source:       strings.ToLower(getEnv("NETWORK_SOURCE", source)),
			StationsFile: getEnv("STATIONS_FILE", ""),
			Timezone:     getEnv("TIMEZONE", "Europe/Madrid"),
		},
		Planner: PlannerConfig{
			WalkSpeedMPS:           getEnvAsFloat("WALK_SPEED_MPS", 1.2),
			TransitSpeedMPS:        getEnvAsFloat("TRANSIT_SPEED_MPS", 8.3),
			TransitThresholdMeters: getEnvAsFloat("TRANSIT_THRESHOLD_METERS", 1200),
			ShuttleMode:            strings.ToLower(getEnv("SHUTTLE_MODE", "always")),
			ShuttleEventDates:      getEnvAsSlice("SHUTTLE_EVENT_DATES", nil),
			DestinationName:        getEnv("DESTINATION_NAME", ""),
			DestinationLat:         getEnvAsFloat("DESTINATION_LAT", 0),
			DestinationLon:         getEnvAsFloat("DESTINATION_LON", 0),
			HasDestination:         hasLat && hasLon,
		},
		LivePlanner: LivePlannerConfig{
			URL:     getEnv("LIVE_PLANNER_URL", ""),
			Timeout: time.Duration(getEnvAsInt("LIVE_PLANNER_TIMEOUT_MS", 4000)) * time.Millisecond,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID"}),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Network.Source {
	case NetworkSourceEmbedded:
	case NetworkSourceFile:
		if c.Network.StationsFile == "" {
			return fmt.Errorf("STATIONS_FILE is required when NETWORK_SOURCE is 'file'")
		}
	case NetworkSourceDatabase:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when NETWORK_SOURCE is 'database'")
		}
	default:
		return fmt.Errorf("invalid network source: %s (must be 'embedded', 'file' or 'database')", c.Network.Source)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Planner.WalkSpeedMPS <= 0 {
		return fmt.Errorf("WALK_SPEED_MPS must be positive")
	}
	if c.Planner.TransitSpeedMPS <= 0 {
		return fmt.Errorf("TRANSIT_SPEED_MPS must be positive")
	}
	if c.Planner.TransitThresholdMeters <= 0 {
		return fmt.Errorf("TRANSIT_THRESHOLD_METERS must be positive")
	}

	switch c.Planner.ShuttleMode {
	case "always", "never":
	case "event-days":
		if len(c.Planner.ShuttleEventDates) == 0 {
			return fmt.Errorf("SHUTTLE_EVENT_DATES is required when SHUTTLE_MODE is 'event-days'")
		}
	default:
		return fmt.Errorf("invalid shuttle mode: %s (must be 'always', 'never' or 'event-days')", c.Planner.ShuttleMode)
	}

	if c.Planner.HasDestination {
		if c.Planner.DestinationLat < -90 || c.Planner.DestinationLat > 90 ||
			c.Planner.DestinationLon < -180 || c.Planner.DestinationLon > 180 {
			return fmt.Errorf("DESTINATION_LAT/DESTINATION_LON out of range")
		}
	}

	if c.LivePlanner.Enabled() && c.LivePlanner.Timeout <= 0 {
		return fmt.Errorf("LIVE_PLANNER_TIMEOUT_MS must be positive")
	}

	return nil
}

// Location resolves the configured timetable time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Network.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Network.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid number value for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
