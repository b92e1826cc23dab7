package app

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	envVars := []string{
		"HTTP_ADDR", "MONGO_URI", "MONGO_DB",
		"LOG_LEVEL", "LOG_FORMAT", "TORRENT_DATA_DIR",
		"SWEEP_INTERVAL_SECONDS", "REMOVE_THRESHOLD_BYTES", "STOP_THRESHOLD_BYTES",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := LoadConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"HTTPAddr", cfg.HTTPAddr, ":8080"},
		{"MongoURI", cfg.MongoURI, "mongodb://localhost:27017"},
		{"MongoDatabase", cfg.MongoDatabase, "queuedremove"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "text"},
		{"TorrentDataDir", cfg.TorrentDataDir, "data"},
		{"SweepInterval", cfg.SweepInterval, 60 * time.Second},
		{"RemoveThresholdBytes", cfg.RemoveThresholdBytes, int64(100 << 20)},
		{"StopThresholdBytes", cfg.StopThresholdBytes, int64(1 << 30)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("REMOVE_THRESHOLD_BYTES", "1048576")

	cfg := LoadConfig()

	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want lowercased", cfg.LogLevel)
	}
	if cfg.SweepInterval != 5*time.Second {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.RemoveThresholdBytes != 1<<20 {
		t.Errorf("RemoveThresholdBytes = %d", cfg.RemoveThresholdBytes)
	}
}

func TestLoadConfigRejectsBadInt(t *testing.T) {
	t.Setenv("STOP_THRESHOLD_BYTES", "not-a-number")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "-10")

	cfg := LoadConfig()

	if cfg.StopThresholdBytes != 1<<30 {
		t.Errorf("StopThresholdBytes = %d, want default", cfg.StopThresholdBytes)
	}
	if cfg.SweepInterval != 60*time.Second {
		t.Errorf("SweepInterval = %v, want default", cfg.SweepInterval)
	}
}
