package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line progress indicator while a slow store or
// network call runs.
type spinner struct {
	w        io.Writer
	message  string
	interval time.Duration
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{w: w, message: message, interval: 80 * time.Millisecond}
}

// start begins the animation. The returned stop function clears the line
// and may be called more than once. The animation also ends when ctx is
// cancelled.
func (s *spinner) start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), styleDim.Render(s.message))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-stopped
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
		})
	}
}

// spin runs fn with a spinner on w.
func spin(ctx context.Context, w io.Writer, message string, fn func(context.Context) error) error {
	stop := newSpinner(w, message).start(ctx)
	defer stop()
	return fn(ctx)
}
