package server

import (
	"fmt"
	"net/http"
	"time"
)

// streamKeepAlive is how often the current frame is resent while the hand
// state is unchanged.
const streamKeepAlive = time.Second

// StreamHandler serves the composed hand pair as MJPEG.
type StreamHandler struct {
	canvas *Canvas
}

// NewStreamHandler creates a new StreamHandler reading from canvas.
func NewStreamHandler(canvas *Canvas) *StreamHandler {
	return &StreamHandler{canvas: canvas}
}

// ServeHTTP streams a new JPEG part each time the hand state changes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		changed := h.canvas.Changed()

		if jpeg := h.canvas.JPEG(); jpeg != nil {
			if err := writePart(w, jpeg); err != nil {
				return
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-changed:
		case <-keepAlive.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
