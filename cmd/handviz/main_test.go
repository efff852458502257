package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestViewerURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{addr: ":8080", want: "http://localhost:8080/api/stream"},
		{addr: "127.0.0.1:9000", want: "http://127.0.0.1:9000/api/stream"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := viewerURL(tt.addr); got != tt.want {
				t.Errorf("viewerURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestFindAssetDir(t *testing.T) {
	dataDir := t.TempDir()

	t.Run("absolute path is kept", func(t *testing.T) {
		if got := findAssetDir("/opt/handviz/assets", dataDir); got != "/opt/handviz/assets" {
			t.Errorf("findAssetDir() = %q", got)
		}
	})

	t.Run("missing relative dir falls back to data dir", func(t *testing.T) {
		want := filepath.Join(dataDir, "no-such-assets")
		if got := findAssetDir("no-such-assets", dataDir); got != want {
			t.Errorf("findAssetDir() = %q, want %q", got, want)
		}
	})
}

func TestFindWebDir(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dataDir, "web"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := findWebDir(dataDir); got == "" {
		t.Error("findWebDir() missed the data dir web folder")
	}
}
