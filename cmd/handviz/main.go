package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/handviz/internal/app"
	"github.com/ayusman/handviz/internal/assets"
	"github.com/ayusman/handviz/internal/capture"
	"github.com/ayusman/handviz/internal/config"
	"github.com/ayusman/handviz/internal/server"
	"github.com/ayusman/handviz/internal/store"
	"github.com/ayusman/handviz/internal/tray"
)

func main() {
	fmt.Println("handviz - Hand Tracking Visualization")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	assetDir := findAssetDir(cfg.AssetDir, cfg.DataDir)
	fmt.Printf("Loading hand images from: %s\n", assetDir)

	sensor := app.NewSensor(cfg.CameraID, capture.SensorConfig{
		FPS:          cfg.SensorFPS,
		MotionThresh: cfg.MotionThresh,
	})
	viz := app.New(app.Config{
		Store:        st,
		Assets:       assets.NewLazy(assets.FileLoader{Dir: assetDir}, cfg.AssetNames, cfg.AssetSize),
		TickInterval: cfg.TickInterval(),
	}, sensor)

	canvas := server.NewCanvas(server.DefaultPreviewWidth)
	viz.AddRenderer(canvas)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New(viz.Enabled())
		tr.OnToggle(viz.SetEnabled)
		tr.OnOpenViewer(func() { openBrowser(viewerURL(cfg.Addr)) })
		tr.OnQuit(stop)
		viz.AddRenderer(tr)
	}

	// The rest of the application keeps serving when the visualization
	// cannot start.
	if err := viz.Start(); err != nil {
		log.Printf("Hand visualization disabled: %v", err)
	}

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Canvas:    canvas,
			Pipeline:  viz,
		}),
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if tr != nil {
		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		tr.Run()
		stop()
	}
	<-ctx.Done()

	log.Println("Shutting down")
	if err := viz.Close(); err != nil {
		log.Printf("Error stopping visualization: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
}

// findAssetDir resolves the hand image directory. A relative dir is looked up
// from the working directory first and then inside the data directory.
func findAssetDir(dir, dataDir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	return filepath.Join(dataDir, dir)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/api/stream"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
