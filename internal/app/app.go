// Package app wires the hand sensor, the tracking core and the renderers into
// the running handviz application.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handviz/internal/assets"
	"github.com/ayusman/handviz/internal/capture"
	"github.com/ayusman/handviz/internal/detector"
	"github.com/ayusman/handviz/internal/overlay"
	"github.com/ayusman/handviz/internal/store"
	"github.com/ayusman/handviz/internal/tracking"
)

// DefaultTickInterval is the render period when none is configured (~30 Hz).
const DefaultTickInterval = time.Second / 30

// SettingEnabled is the settings key holding the visualization switch.
const SettingEnabled = "visualization.enabled"

// Renderer receives the pair selected on every tick. Render is called from
// the tick goroutine and must not block.
type Renderer interface {
	Render(pair overlay.Pair)
}

// Sensor is a hand tracking device with its own delivery goroutine.
type Sensor interface {
	tracking.Device
	Start() error
	Stop() error
	Close() error
}

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Assets       *assets.Lazy
	TickInterval time.Duration
}

// App owns the tick loop. The hand images are loaded on the first Start; if
// they cannot be loaded Start fails and nothing is attached to the sensor.
type App struct {
	config Config
	sensor Sensor

	mu        sync.RWMutex
	enabled   bool
	renderers []Renderer

	// Guarded by runMu.
	runMu    sync.Mutex
	table    *assets.Table
	slot     *tracking.Synchronizer
	ingestor *tracking.Ingestor
	hands    *overlay.HandState
	session  *store.Session
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a new App driving sensor. The visualization starts enabled
// unless the store says otherwise.
func New(config Config, sensor Sensor) *App {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}

	a := &App{
		config:  config,
		sensor:  sensor,
		enabled: true,
	}

	if config.Store != nil {
		enabled, err := config.Store.Settings().GetBool(SettingEnabled, true)
		if err != nil {
			log.Printf("Ignoring stored %s: %v", SettingEnabled, err)
			enabled = true
		}
		a.enabled = enabled
	}
	return a
}

// NewSensor builds the camera-backed sensor. It uses the MediaPipe service
// when it can be found and falls back to the mock detector otherwise.
func NewSensor(cameraID int, config capture.SensorConfig) *capture.HandSensor {
	var det detector.Detector
	if sd, err := detector.NewServiceDetector(detector.DefaultConfig()); err == nil {
		det = sd
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}
	return capture.NewHandSensor(capture.NewCamera(cameraID), det, config)
}

// AddRenderer registers r for every subsequent tick.
func (a *App) AddRenderer(r Renderer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderers = append(a.renderers, r)
}

// SetEnabled switches the visualization. While disabled, renderers receive the
// no-hand image on both sides. The choice is persisted when a store is set.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(SettingEnabled, enabled); err != nil {
			log.Printf("Error saving %s: %v", SettingEnabled, err)
		}
	}
	log.Printf("Visualization enabled: %v", enabled)
}

// Enabled returns whether the visualization is currently enabled.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start loads the hand images if needed, attaches the tracking core to the
// sensor and begins ticking. Starting a running app is a no-op.
func (a *App) Start() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if a.hands == nil {
		table, err := a.config.Assets.Table()
		if err != nil {
			return fmt.Errorf("load hand images: %w", err)
		}
		a.table = table
		a.slot = tracking.NewSynchronizer()
		a.ingestor = tracking.NewIngestor(a.slot, table.MaxIndex())
		a.hands = overlay.NewHandState(a.slot, table)
	}

	if err := a.ingestor.Attach(a.sensor); err != nil {
		return fmt.Errorf("attach to sensor: %w", err)
	}
	if err := a.sensor.Start(); err != nil {
		err = fmt.Errorf("start sensor: %w", err)
		if derr := a.ingestor.Detach(); derr != nil {
			err = errors.Join(err, fmt.Errorf("detach: %w", derr))
		}
		return err
	}

	if a.config.Store != nil {
		sess, err := a.config.Store.Sessions().Create()
		if err != nil {
			log.Printf("Error creating session: %v", err)
		}
		a.session = sess
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.Printf("Visualization started (%d images, tick %v)", a.table.Len(), a.config.TickInterval)
	return nil
}

// Stop halts ticking, detaches from the sensor before stopping it and closes
// the session with the final counters.
func (a *App) Stop() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh == nil {
		return nil
	}
	close(a.stopCh)
	<-a.done
	a.stopCh = nil
	a.done = nil

	var errs []error
	if err := a.ingestor.Detach(); err != nil {
		errs = append(errs, fmt.Errorf("detach: %w", err))
	}
	if err := a.sensor.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop sensor: %w", err))
	}

	if a.session != nil {
		if err := a.config.Store.Sessions().Finish(a.session.ID, a.statsLocked()); err != nil {
			errs = append(errs, fmt.Errorf("finish session: %w", err))
		}
		a.session = nil
	}

	log.Println("Visualization stopped")
	return errors.Join(errs...)
}

// Close stops the app and releases the sensor and the hand images.
func (a *App) Close() error {
	return errors.Join(a.Stop(), a.sensor.Close(), a.config.Assets.Close())
}

// Running reports whether the tick loop is active.
func (a *App) Running() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.stopCh != nil
}

// Stats returns the pipeline counters since the first Start.
func (a *App) Stats() store.SessionStats {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.statsLocked()
}

func (a *App) statsLocked() store.SessionStats {
	if a.ingestor == nil {
		return store.SessionStats{}
	}
	in := a.ingestor.Stats()
	sl := a.slot.Stats()
	return store.SessionStats{
		Frames:    in.Frames,
		Published: sl.Published,
		Consumed:  sl.Consumed,
		Dropped:   sl.Overwritten,
		Skipped:   in.Skipped,
	}
}

// run calls OnTick exactly once per tick and fans the pair out to renderers.
func (a *App) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *App) tick() {
	pair := a.hands.OnTick()

	a.mu.RLock()
	enabled := a.enabled
	renderers := a.renderers
	a.mu.RUnlock()

	if !enabled {
		blank := a.table.Get(tracking.NoHand)
		pair = overlay.Pair{Tick: pair.Tick, Left: blank, Right: blank}
	}

	for _, r := range renderers {
		r.Render(pair)
	}
}
