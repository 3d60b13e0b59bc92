package logrusstackhook

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/internal/stackutil"
)

// FilterFunc reports whether a frame should appear in the log entry.
type FilterFunc func(frame runtime.Frame) bool

// SkipPackages drops frames from functions in any of the given packages.
func SkipPackages(packages ...string) FilterFunc {
	return func(frame runtime.Frame) bool {
		for _, p := range packages {
			if strings.HasPrefix(frame.Function, p+".") {
				return false
			}
		}

		return true
	}
}

// SkipFunctions drops frames whose function name contains any of names.
func SkipFunctions(names ...string) FilterFunc {
	return func(frame runtime.Frame) bool {
		for _, name := range names {
			if strings.Contains(frame.Function, name) {
				return false
			}
		}

		return true
	}
}

func All(filters ...FilterFunc) FilterFunc {
	return func(frame runtime.Frame) bool {
		for _, fn := range filters {
			if fn != nil && !fn(frame) {
				return false
			}
		}

		return true
	}
}

var DefaultFilter = All(
	SkipPackages("github.com/sirupsen/logrus"),
	SkipFunctions("logrusstackhook.(*StackHook).Fire", "stackutil.GetStack"),
)

type Options struct {
	// Levels defaults to debug and trace.
	Levels []logrus.Level
	// Depth is the most frames written per entry, counted after filtering.
	Depth  int
	Filter FilterFunc
}

// StackHook adds "stack.NN" fields with the caller's frames to entries at
// the configured levels.
type StackHook struct {
	levels []logrus.Level
	depth  int
	filter FilterFunc
}

func New(opts Options) *StackHook {
	h := &StackHook{levels: opts.Levels, depth: opts.Depth, filter: opts.Filter}

	if h.levels == nil {
		h.levels = []logrus.Level{logrus.DebugLevel, logrus.TraceLevel}
	}
	if h.depth <= 0 {
		h.depth = 10
	}
	if h.filter == nil {
		h.filter = DefaultFilter
	}

	return h
}

func (h *StackHook) Levels() []logrus.Level { return h.levels }

func (h *StackHook) Fire(e *logrus.Entry) error {
	n := 0

	for _, frame := range stackutil.GetStack(50, 0) {
		if n == h.depth {
			break
		}

		if !h.filter(frame) {
			continue
		}

		e.Data[fmt.Sprintf("stack.%02d", n)] = stackutil.FormatStackFrame(frame)
		n++
	}

	return nil
}
