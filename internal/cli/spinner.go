package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// spinnerOut receives spinner frames.
var spinnerOut io.Writer = os.Stderr

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates the current pipeline stage on a single terminal line.
// The stage message can change while it runs; stop clears the line.
type spinner struct {
	w        io.Writer
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	msg   string
	width int // widest line drawn so far
}

// startSpinner shows msg on w until stop is called or ctx ends.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		msg:     msg,
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, utf8.RuneCountInString(frame)+1+utf8.RuneCountInString(s.msg))
	fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(frame), StyleDim.Render(s.msg))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// stage replaces the message shown next to the spinner.
func (s *spinner) stage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
}

// stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

// fail stops the spinner and reports msg as an error line.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}

// loadStage is the spinner message while the input table is read.
func loadStage(input string) string {
	return "Loading " + input + "..."
}

// buildStage is the spinner message while a table is grouped and pruned.
func buildStage(rows int, levels []string) string {
	return fmt.Sprintf("Building treemap from %d rows by %s...", rows, strings.Join(levels, " › "))
}

// renderStage is the spinner message while artifacts are rendered.
func renderStage(formats []string) string {
	return "Rendering " + strings.Join(formats, ", ") + "..."
}
