package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HANDVIZ_DATA_DIR", "/tmp/handviz-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Addr:         ":8080",
		DataDir:      "/tmp/handviz-test",
		AssetDir:     "assets",
		AssetNames:   []string{"nohand.png", "hand0.png", "hand1.png", "hand2.png", "hand3.png", "hand4.png", "hand5.png"},
		AssetSize:    1024,
		CameraID:     0,
		SensorFPS:    15,
		TickHz:       30,
		MotionThresh: 1.0,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDataDirFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HANDVIZ_DATA_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(home, ".handviz"); cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
	if want := filepath.Join(home, ".handviz", "handviz.db"); cfg.DBPath() != want {
		t.Errorf("DBPath() = %q, want %q", cfg.DBPath(), want)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HANDVIZ_DATA_DIR", "/data")
	t.Setenv("HANDVIZ_ADDR", "127.0.0.1:9000")
	t.Setenv("HANDVIZ_ASSETS", "empty.png,one.png,two.png")
	t.Setenv("HANDVIZ_TICK_HZ", "60")
	t.Setenv("HANDVIZ_TRAY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if diff := cmp.Diff([]string{"empty.png", "one.png", "two.png"}, cfg.AssetNames); diff != "" {
		t.Errorf("AssetNames mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Tray {
		t.Error("Tray = false, want true")
	}
	if got, want := cfg.TickInterval(), time.Second/60; got != want {
		t.Errorf("TickInterval() = %v, want %v", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "unparsable number", key: "HANDVIZ_TICK_HZ", value: "fast", wantErr: "parse env:"},
		{name: "single asset", key: "HANDVIZ_ASSETS", value: "nohand.png", wantErr: "HANDVIZ_ASSETS"},
		{name: "empty asset name", key: "HANDVIZ_ASSETS", value: "nohand.png,,hand0.png", wantErr: "empty name"},
		{name: "zero asset size", key: "HANDVIZ_ASSET_SIZE", value: "0", wantErr: "HANDVIZ_ASSET_SIZE"},
		{name: "zero sensor fps", key: "HANDVIZ_SENSOR_FPS", value: "0", wantErr: "HANDVIZ_SENSOR_FPS"},
		{name: "negative tick rate", key: "HANDVIZ_TICK_HZ", value: "-5", wantErr: "HANDVIZ_TICK_HZ"},
		{name: "negative motion threshold", key: "HANDVIZ_MOTION_THRESHOLD", value: "-1", wantErr: "HANDVIZ_MOTION_THRESHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HANDVIZ_DATA_DIR", "/data")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
