package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LineSeparator joins report lines in the pushed body.
const LineSeparator = "  \n"

// FlushFunc delivers a sealed report body.
type FlushFunc func(ctx context.Context, body string)

// Report is an ordered, append-only list of lines. It is safe for concurrent use.
type Report struct {
	mu     sync.Mutex
	lines  []string
	sealed bool
	once   sync.Once
	logger *log.Logger
}

// NewReport creates an empty report. Appended lines are echoed to logger at info level.
func NewReport(logger *log.Logger) *Report {
	if logger == nil {
		logger = log.Default()
	}
	return &Report{logger: logger}
}

// Add formats and appends a single line.
func (r *Report) Add(format string, args ...any) {
	r.Append(fmt.Sprintf(format, args...))
}

// Append appends lines in order. Lines appended after [Report.Seal] are dropped.
func (r *Report) Append(lines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		r.logger.Warn("report sealed, dropping lines", "count", len(lines))
		return
	}
	for _, line := range lines {
		r.logger.Info(line)
		r.lines = append(r.lines, line)
	}
}

// Lines returns a copy of the recorded lines.
func (r *Report) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Len returns the number of recorded lines.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Body joins the lines with [LineSeparator].
func (r *Report) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, LineSeparator)
}

// Seal stops the report from accepting further lines.
func (r *Report) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether [Report.Seal] was called.
func (r *Report) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// Flush seals the report and passes its body to fn. Only the first call has any effect.
func (r *Report) Flush(ctx context.Context, fn FlushFunc) {
	r.once.Do(func() {
		r.Seal()
		if fn != nil {
			fn(ctx, r.Body())
		}
	})
}
