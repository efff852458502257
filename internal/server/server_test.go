package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/handviz/internal/assets"
	"github.com/ayusman/handviz/internal/overlay"
	"github.com/ayusman/handviz/internal/store"
	"github.com/ayusman/handviz/internal/tracking"
	"gocv.io/x/gocv"
)

// solidLoader yields square BGR images.
type solidLoader struct{}

func (solidLoader) Load(name string) (gocv.Mat, error) {
	mat := gocv.NewMatWithSize(32, 32, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(40, 80, 160, 0))
	return mat, nil
}

func newTestTable(t *testing.T) *assets.Table {
	t.Helper()
	table, err := assets.Load(solidLoader{}, assets.DefaultNames, 32)
	if err != nil {
		t.Fatalf("assets.Load() error = %v", err)
	}
	t.Cleanup(func() { table.Close() })
	return table
}

func pairFor(table *assets.Table, tick uint64, left, right int) overlay.Pair {
	return overlay.Pair{
		Tick:  tick,
		State: tracking.State{Left: left, Right: right},
		Left:  table.Get(left),
		Right: table.Get(right),
	}
}

type fakePipeline struct {
	enabled bool
	stats   store.SessionStats
}

func (p *fakePipeline) Enabled() bool             { return p.enabled }
func (p *fakePipeline) SetEnabled(enabled bool)   { p.enabled = enabled }
func (p *fakePipeline) Stats() store.SessionStats { return p.stats }

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_State(t *testing.T) {
	table := newTestTable(t)
	canvas := NewCanvas(0)
	pipeline := &fakePipeline{enabled: true, stats: store.SessionStats{Frames: 5, Published: 5, Consumed: 3, Dropped: 2}}
	s := New(Config{Canvas: canvas, Pipeline: pipeline})

	get := func(t *testing.T) stateResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response stateResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return response
	}

	t.Run("before first tick", func(t *testing.T) {
		response := get(t)
		if response.Rendered {
			t.Error("expected rendered=false before any tick")
		}
		if response.Enabled == nil || !*response.Enabled {
			t.Error("expected enabled=true")
		}
	})

	t.Run("after a tick", func(t *testing.T) {
		canvas.Render(pairFor(table, 7, 2, 5))

		response := get(t)
		if !response.Rendered {
			t.Error("expected rendered=true")
		}
		if response.Left != 2 || response.Right != 5 {
			t.Errorf("expected state 2/5, got %d/%d", response.Left, response.Right)
		}
		if response.LeftImage != "hand1.png" || response.RightImage != "hand4.png" {
			t.Errorf("unexpected images %s/%s", response.LeftImage, response.RightImage)
		}
		if response.Tick != 7 {
			t.Errorf("expected tick 7, got %d", response.Tick)
		}
		if response.Stats == nil || response.Stats.Dropped != 2 {
			t.Errorf("expected stats with 2 dropped, got %+v", response.Stats)
		}
	})

	t.Run("visualization toggle is routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/visualization", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})
}

func TestServer_RoutesNeedTheirDependencies(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/state", "/api/stream", "/api/sessions", "/api/visualization"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>Hello, World!</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	t.Run("serves index.html at root path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		if rec.Body.String() != testContent {
			t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
