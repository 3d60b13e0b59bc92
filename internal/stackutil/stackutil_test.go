package stackutil

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStackStartsAtCaller(t *testing.T) {
	a := assert.New(t)

	frames := GetStack(10, 0)
	if a.NotEmpty(frames) {
		a.True(strings.HasSuffix(frames[0].Function, "TestGetStackStartsAtCaller"), frames[0].Function)
	}
}

func TestFormatStack(t *testing.T) {
	a := assert.New(t)

	a.Equal([]string{"/a/b.go:12: pkg.Fn"}, FormatStack([]runtime.Frame{{File: "/a/b.go", Line: 12, Function: "pkg.Fn"}}))
}
