package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr             string
	MongoURI             string
	MongoDatabase        string
	LogLevel             string
	LogFormat            string
	TorrentDataDir       string
	SweepInterval        time.Duration
	RemoveThresholdBytes int64 // fallback until persisted state is loaded
	StopThresholdBytes   int64 // fallback until persisted state is loaded
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGO_DB", "queuedremove"),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TorrentDataDir:       getEnv("TORRENT_DATA_DIR", "data"),
		SweepInterval:        time.Duration(getEnvInt64("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		RemoveThresholdBytes: getEnvInt64("REMOVE_THRESHOLD_BYTES", 100<<20),
		StopThresholdBytes:   getEnvInt64("STOP_THRESHOLD_BYTES", 1<<30),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}
