package logrusstackhook

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFilters(t *testing.T) {
	for _, tc := range []struct {
		name   string
		filter FilterFunc
		frame  runtime.Frame
		keep   bool
	}{
		{"PackageMatch", SkipPackages("github.com/sirupsen/logrus"), runtime.Frame{Function: "github.com/sirupsen/logrus.(*Entry).Log"}, false},
		{"PackagePrefixOnly", SkipPackages("net/http"), runtime.Frame{Function: "net/http/httptest.NewRecorder"}, true},
		{"FunctionMatch", SkipFunctions("session.(*Controller)"), runtime.Frame{Function: "fknsrs.biz/p/viddown/internal/session.(*Controller).tick"}, false},
		{"FunctionMiss", SkipFunctions("catalog"), runtime.Frame{Function: "main.main"}, true},
		{"AllEmpty", All(), runtime.Frame{Function: "main.main"}, true},
		{"AllOneRejects", All(nil, SkipFunctions("main")), runtime.Frame{Function: "main.main"}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			a.Equal(tc.keep, tc.filter(tc.frame))
		})
	}
}

func TestFireAddsStackFields(t *testing.T) {
	a := assert.New(t)

	var buf bytes.Buffer

	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.AddHook(New(Options{}))

	l.Debug("with stack")
	l.Info("without stack")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	a.Len(lines, 2)
	a.Contains(lines[0], "stack.00=")
	a.Contains(lines[0], "TestFireAddsStackFields")
	a.NotContains(lines[0], "logrus.(*Entry)")
	a.NotContains(lines[1], "stack.00=")
}

func TestFireRespectsDepth(t *testing.T) {
	a := assert.New(t)

	e := logrus.NewEntry(logrus.New())
	e.Data = logrus.Fields{}

	a.NoError(New(Options{Depth: 1}).Fire(e))

	a.Contains(e.Data, "stack.00")
	a.NotContains(e.Data, "stack.01")
}
