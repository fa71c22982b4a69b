package discord

import (
	"bytes"
	"sync"
	"time"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultIdleTimeout  = 1 * time.Second  // Send after output goes quiet
	defaultMaxInterval  = 15 * time.Second // Never wait longer during continuous output
)

// Poster accepts rendered snapshots. *Bot satisfies it.
type Poster interface {
	PostSnapshot(name string, pngData []byte) error
}

// CaptureFunc renders the current grid to a PNG.
type CaptureFunc func() ([]byte, error)

// Streamer watches a terminal session and posts a snapshot whenever
// the screen changes, debounced: it waits for output to go idle, but
// never lets more than the max interval pass during continuous output.
type Streamer struct {
	poster  Poster
	name    string
	capture CaptureFunc

	poll time.Duration
	idle time.Duration
	max  time.Duration

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	pendingTimer *time.Timer
	maxTimer     *time.Timer
	lastSent     time.Time
	lastCapture  []byte
}

// NewStreamer creates a streamer for one session.
func NewStreamer(poster Poster, name string, capture CaptureFunc) *Streamer {
	return &Streamer{
		poster:  poster,
		name:    name,
		capture: capture,
		poll:    defaultPollInterval,
		idle:    defaultIdleTimeout,
		max:     defaultMaxInterval,
	}
}

// Start begins streaming.
func (s *Streamer) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.lastSent = time.Now()
	s.mu.Unlock()

	go s.pollLoop()
}

// Stop stops streaming. Idempotent.
func (s *Streamer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)

	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
		s.pendingTimer = nil
	}
	if s.maxTimer != nil {
		s.maxTimer.Stop()
		s.maxTimer = nil
	}
}

func (s *Streamer) pollLoop() {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	s.mu.Lock()
	stopCh := s.stopCh
	s.mu.Unlock()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.checkForChanges()
		}
	}
}

func (s *Streamer) checkForChanges() {
	snapshot, err := s.capture()
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	if bytes.Equal(snapshot, s.lastCapture) {
		return
	}
	s.lastCapture = snapshot
	s.scheduleSend()
}

// scheduleSend runs with the mutex held.
func (s *Streamer) scheduleSend() {
	if time.Since(s.lastSent) >= s.max {
		s.send()
		return
	}

	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
	}
	s.pendingTimer = time.AfterFunc(s.idle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.running {
			s.send()
		}
	})

	if s.maxTimer == nil {
		s.maxTimer = time.AfterFunc(s.max, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.running {
				s.send()
			}
		})
	}
}

// send runs with the mutex held.
func (s *Streamer) send() {
	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
		s.pendingTimer = nil
	}
	if s.maxTimer != nil {
		s.maxTimer.Stop()
		s.maxTimer = nil
	}

	if s.lastCapture == nil {
		return
	}
	s.lastSent = time.Now()
	s.poster.PostSnapshot(s.name, s.lastCapture)
}
