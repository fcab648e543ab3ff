// Package progress is the stderr progress reporter. It renders a
// single redrawn line showing hashing then verification progress,
// throttled well below a human's flicker threshold and disabled
// outright when stderr is not a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/desbma/bdf/internal/stats"
)

// interval bounds the redraw rate at 10Hz; faster than that wastes
// syscalls without being perceptible.
const interval = 100 * time.Millisecond

// Reporter periodically redraws a single status line to an io.Writer
// (normally os.Stderr) describing a Run's progress.
type Reporter struct {
	w      io.Writer
	st     *stats.Run
	done   chan struct{}
	closed chan struct{}
}

// Enabled reports whether a progress reporter should be started for w -
// false when it is not a terminal, so redirected/piped runs stay clean
// of decorative output.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New starts a Reporter that redraws against w until Stop is called.
// Callers should check Enabled first; New itself does not gate on it so
// tests can exercise the redraw loop against a plain buffer.
func New(w io.Writer, st *stats.Run) *Reporter {
	r := &Reporter{
		w:      w,
		st:     st,
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Reporter) loop() {
	defer close(r.closed)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.render()
		case <-r.done:
			r.render()
			fmt.Fprint(r.w, "\n")
			return
		}
	}
}

func (r *Reporter) render() {
	hashed, toHash := r.st.HashProgress()
	verified, toVerify := r.st.VerifyProgress()

	line := fmt.Sprintf("\rhashing %s", pct(hashed, toHash))
	if toVerify > 0 {
		line += fmt.Sprintf("  verifying %s", pct(verified, toVerify))
	}
	fmt.Fprint(r.w, line)
}

func pct(done, total int64) string {
	if total == 0 {
		return "100%"
	}
	return fmt.Sprintf("%d%%", (done*100)/total)
}

// Stop ends the redraw loop and blocks until the final frame is
// flushed.
func (r *Reporter) Stop() {
	close(r.done)
	<-r.closed
}
