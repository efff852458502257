package tracking

import (
	"errors"
	"sync"
)

// MockDevice is a Device whose frames are pushed by the caller.
// Deliver plays the role of the sensor's delivery goroutine.
type MockDevice struct {
	mu        sync.Mutex
	listeners []Listener

	deliverMu sync.Mutex
	addErr    error
}

// NewMockDevice creates a new MockDevice instance.
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

// SetAddError sets the error that will be returned by AddListener.
func (d *MockDevice) SetAddError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addErr = err
}

// AddListener registers l.
func (d *MockDevice) AddListener(l Listener) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.addErr != nil {
		return d.addErr
	}
	for _, existing := range d.listeners {
		if existing == l {
			return errors.New("listener already registered")
		}
	}
	d.listeners = append(d.listeners, l)
	return nil
}

// RemoveListener unregisters l and waits for any delivery in progress.
func (d *MockDevice) RemoveListener(l Listener) {
	d.mu.Lock()
	for i, existing := range d.listeners {
		if existing == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	d.deliverMu.Lock()
	d.deliverMu.Unlock()
}

// Deliver hands frame to every registered listener in registration order.
func (d *MockDevice) Deliver(frame Frame) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.Unlock()

	for _, l := range listeners {
		l.OnFrame(frame)
	}
}

// Listeners returns the number of registered listeners.
func (d *MockDevice) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
