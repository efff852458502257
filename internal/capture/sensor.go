package capture

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handviz/internal/detector"
	"github.com/ayusman/handviz/internal/tracking"
)

// RefreshInterval bounds how long a still scene goes without hand detection.
const RefreshInterval = time.Second

var (
	// ErrSensorRunning is returned by Start when the sensor is already running.
	ErrSensorRunning = errors.New("sensor already running")
	// ErrListenerRegistered is returned when adding the same listener twice.
	ErrListenerRegistered = errors.New("listener already registered")
)

// SensorConfig tunes a HandSensor.
type SensorConfig struct {
	// FPS is the capture and delivery rate.
	FPS int
	// MotionThresh gates detection on frame changes; 0 disables gating.
	MotionThresh float64
	// MatchDistance is passed to the hand ID tracker.
	MatchDistance float64
}

// HandSensor is a tracking.Device backed by a camera and a hand detector.
//
// While running it owns a delivery goroutine that captures frames, detects
// hands and calls each listener's OnFrame in turn, one frame at a time.
// Listeners must not call RemoveListener from inside OnFrame.
type HandSensor struct {
	camera   Camera
	detector detector.Detector
	motion   *MotionDetector
	fps      int

	mu        sync.Mutex
	listeners []tracking.Listener

	// Held for the duration of a delivery so RemoveListener can wait it out.
	deliverMu sync.Mutex

	// Owned by the delivery goroutine.
	tracker    *idTracker
	seq        uint64
	lastDetect time.Time

	runMu  sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// NewHandSensor creates a sensor reading from camera and detecting with det.
func NewHandSensor(camera Camera, det detector.Detector, config SensorConfig) *HandSensor {
	fps := config.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}

	s := &HandSensor{
		camera:   camera,
		detector: det,
		fps:      fps,
		tracker:  newIDTracker(config.MatchDistance),
	}
	if config.MotionThresh > 0 {
		s.motion = NewMotionDetector(config.MotionThresh)
	}
	return s
}

// AddListener registers l for frame delivery.
func (s *HandSensor) AddListener(l tracking.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.listeners {
		if existing == l {
			return ErrListenerRegistered
		}
	}
	s.listeners = append(s.listeners, l)
	return nil
}

// RemoveListener unregisters l. It returns only once no OnFrame call to l is
// in progress.
func (s *HandSensor) RemoveListener(l tracking.Listener) {
	s.mu.Lock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.deliverMu.Lock()
	s.deliverMu.Unlock()
}

// Start opens the camera and starts the delivery goroutine.
func (s *HandSensor) Start() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopCh != nil {
		return ErrSensorRunning
	}
	if err := s.camera.Open(); err != nil {
		return err
	}
	s.camera.SetFPS(s.fps)

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)

	log.Printf("Hand sensor started at %d FPS", s.fps)
	return nil
}

// Stop halts delivery, waits for the delivery goroutine to exit and closes
// the camera. Stopping a sensor that is not running is a no-op.
func (s *HandSensor) Stop() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopCh == nil {
		return nil
	}
	close(s.stopCh)
	<-s.done
	s.stopCh = nil
	s.done = nil

	if s.motion != nil {
		s.motion.Reset()
	}
	log.Println("Hand sensor stopped")
	return s.camera.Close()
}

// Close stops the sensor and releases the detector.
func (s *HandSensor) Close() error {
	err := s.Stop()
	if s.motion != nil {
		s.motion.Close()
	}
	if derr := s.detector.Close(); err == nil {
		err = derr
	}
	return err
}

// Running reports whether the delivery goroutine is active.
func (s *HandSensor) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.stopCh != nil
}

func (s *HandSensor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, ok, err := s.sample()
			if err != nil {
				log.Printf("Error sampling hands: %v", err)
				continue
			}
			if ok {
				s.deliver(frame)
			}
		}
	}
}

// sample captures one camera frame and detects hands in it. It returns false
// when the scene is unchanged and detection was skipped.
func (s *HandSensor) sample() (tracking.Frame, bool, error) {
	mat, err := s.camera.ReadFrame()
	if err != nil {
		return tracking.Frame{}, false, err
	}
	defer mat.Close()

	now := time.Now()
	if s.motion != nil {
		moved, _ := s.motion.Detect(mat)
		if !moved && now.Sub(s.lastDetect) < RefreshInterval {
			return tracking.Frame{}, false, nil
		}
	}

	hands, err := s.detector.Detect(mat)
	if err != nil {
		return tracking.Frame{}, false, err
	}
	s.lastDetect = now

	return s.frameFromHands(hands, now), true, nil
}

// frameFromHands converts detected landmarks into a tracking frame.
func (s *HandSensor) frameFromHands(hands []detector.HandLandmarks, at time.Time) tracking.Frame {
	palms := make([]detector.Point3D, len(hands))
	for i := range hands {
		palms[i] = hands[i].Palm()
	}
	ids := s.tracker.assign(palms)

	s.seq++
	frame := tracking.Frame{
		Seq:       s.seq,
		Timestamp: at,
		Hands:     make([]tracking.Hand, len(hands)),
	}
	for i := range hands {
		frame.Hands[i] = tracking.Hand{
			ID:              ids[i],
			PalmX:           palms[i].X,
			ExtendedFingers: hands[i].ExtendedFingers(),
		}
	}
	return frame
}

func (s *HandSensor) deliver(frame tracking.Frame) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	listeners := append([]tracking.Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnFrame(frame)
	}
}
