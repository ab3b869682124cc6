package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrClosed is returned by writes after Close
var ErrClosed = errors.New("sse stream closed")

// Writer serialises the SSE output of one response. The stream headers are
// sent lazily with the first write, so until then the handler may still
// answer with an ordinary JSON error.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
	closed  bool
}

// NewWriter wraps w
func NewWriter(w http.ResponseWriter) *Writer {
	return &Writer{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// Started reports whether any part of the stream has been written
func (s *Writer) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// WriteEvent writes one event. data is marshalled before anything is written.
func (s *Writer) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	return s.flush()
}

// WriteKeepAlive writes an SSE comment, which clients ignore
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		return err
	}
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	return s.flush()
}

// Close makes every later write fail with ErrClosed
func (s *Writer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Writer) start() error {
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	s.w.WriteHeader(http.StatusOK)
	s.started = true
	return nil
}

func (s *Writer) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
