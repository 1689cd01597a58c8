package bootstrap

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DeliveryMode string
	ScratchDir   string
	StaticDir    string
	StaticPrefix string
	IndexHTML    string

	CascadeDir        string
	FaceCascade       string
	EyeCascade        string
	PedestrianCascade string
	VehicleCascade    string
	FaceBackend       string
	PigoCascade       string

	VehicleFallback   string
	VideoSummary      string
	JPEGQuality       int
	MaxUploadMB       int
	MaxConcurrentJobs int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ArtifactTTL     time.Duration
	JanitorInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DeliveryMode: getEnv("DELIVERY_MODE", "inline"),
		ScratchDir:   getEnv("SCRATCH_DIR", filepath.Join(os.TempDir(), "cascade-detect")),
		StaticDir:    getEnv("STATIC_DIR", "./static"),
		StaticPrefix: getEnv("STATIC_PREFIX", "/static"),
		IndexHTML:    getEnv("INDEX_HTML", "./static/index.html"),

		CascadeDir:        getEnv("CASCADE_DIR", "/usr/share/opencv4/haarcascades"),
		FaceCascade:       getEnv("FACE_CASCADE", "haarcascade_frontalface_default.xml"),
		EyeCascade:        getEnv("EYE_CASCADE", "haarcascade_eye.xml"),
		PedestrianCascade: getEnv("PEDESTRIAN_CASCADE", "haarcascade_fullbody.xml"),
		VehicleCascade:    getEnv("VEHICLE_CASCADE", "haarcascade_car.xml"),
		FaceBackend:       getEnv("FACE_BACKEND", "opencv"),
		PigoCascade:       getEnv("PIGO_CASCADE", "./models/facefinder"),

		VehicleFallback:   getEnv("VEHICLE_FALLBACK", "substitute"),
		VideoSummary:      getEnv("VIDEO_SUMMARY", "totals"),
		JPEGQuality:       getEnvInt("JPEG_QUALITY", 90),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 200),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 4),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ArtifactTTL:     getEnvDuration("ARTIFACT_TTL", time.Hour),
		JanitorInterval: getEnvDuration("JANITOR_INTERVAL", time.Minute),
	}
}

// PublishDir is where url delivery writes processed artifacts.
func (c *Config) PublishDir() string {
	return filepath.Join(c.StaticDir, "processed")
}

func (c *Config) PublishURLPrefix() string {
	return c.StaticPrefix + "/processed"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
