package capture

import (
	"errors"
	"testing"
)

func TestNewCameraWithConfig_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		config  CameraConfig
		wantFPS int
	}{
		{name: "zero config", config: CameraConfig{}, wantFPS: DefaultFPS},
		{name: "explicit fps", config: CameraConfig{DeviceID: 1, FPS: 30}, wantFPS: 30},
		{name: "negative fps", config: CameraConfig{DeviceID: 2, FPS: -1}, wantFPS: DefaultFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCameraWithConfig(tt.config)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}

			impl := cam.(*cameraImpl)
			if impl.config.Width != DefaultWidth || impl.config.Height != DefaultHeight {
				t.Errorf("resolution = %dx%d, want %dx%d", impl.config.Width, impl.config.Height, DefaultWidth, DefaultHeight)
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	steps := []struct {
		fps     int
		wantFPS int
	}{
		{fps: 10, wantFPS: 10},
		{fps: 1, wantFPS: 1},
		{fps: 0, wantFPS: 1},
		{fps: -5, wantFPS: 1},
		{fps: 60, wantFPS: 60},
	}

	for _, s := range steps {
		cam.SetFPS(s.fps)
		if got := cam.FPS(); got != s.wantFPS {
			t.Errorf("after SetFPS(%d) FPS() = %d, want %d", s.fps, got, s.wantFPS)
		}
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
