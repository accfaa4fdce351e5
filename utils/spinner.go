package utils

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// Spinner is a terminal progress indicator.
type Spinner struct {
	mu       sync.Mutex
	out      *termenv.Output
	delay    time.Duration
	message  string
	StopMsg  string
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSpinner instantiates a new progress indicator writing to w.
func NewSpinner(w io.Writer, msg string, d time.Duration) *Spinner {
	return &Spinner{
		out:     termenv.NewOutput(w),
		delay:   d,
		message: msg,
	}
}

// Start starts the progress indicator. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.out.HideCursor()

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		for {
			for _, r := range `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏` {
				select {
				case <-stop:
					return
				default:
				}
				s.mu.Lock()
				s.out.ClearLine()
				fmt.Fprintf(s.out, "\r%s %s", s.message, s.out.String(string(r)).Foreground(termenv.ANSIGreen))
				s.mu.Unlock()
				time.Sleep(s.delay)
			}
		}
	}(s.stopChan, s.doneChan)
}

// Stop stops the progress indicator and prints the StopMsg, if any.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.ClearLine()
	fmt.Fprint(s.out, "\r")
	s.RestoreCursor()
	if len(s.StopMsg) > 0 {
		fmt.Fprintln(s.out, s.StopMsg)
	}
}

// RestoreCursor restores back the cursor visibility.
func (s *Spinner) RestoreCursor() {
	s.out.ShowCursor()
}
