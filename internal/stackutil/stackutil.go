package stackutil

import (
	"fmt"
	"runtime"
)

// GetStack returns up to depth frames, starting at the caller of GetStack
// plus skip.
func GetStack(depth, skip int) []runtime.Frame {
	if depth <= 0 {
		return nil
	}

	// runtime.Callers and GetStack itself
	skip += 2

	pc := make([]uintptr, depth+skip)

	n := runtime.Callers(0, pc)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc[:n])

	a := make([]runtime.Frame, 0, n)

	for i := 0; ; i++ {
		frame, more := frames.Next()

		if i >= skip && len(a) < depth {
			a = append(a, frame)
		}

		if !more {
			break
		}
	}

	return a
}

func FormatStack(a []runtime.Frame) []string {
	r := make([]string, len(a))
	for i, e := range a {
		r[i] = FormatStackFrame(e)
	}
	return r
}

func FormatStackFrame(f runtime.Frame) string {
	return fmt.Sprintf("%s:%d: %s", f.File, f.Line, f.Function)
}
