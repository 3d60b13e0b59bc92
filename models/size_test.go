package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var formatSizeTests = []struct {
	bytes int64
	label string
}{
	{0, "0 Byte"},
	{512, "512 Bytes"},
	{1024, "1 KB"},
	{1536, "1.5 KB"},
	{5 << 20, "5 MB"},
	{120 << 20, "120 MB"},
	{3 << 30, "3 GB"},
	{2048 << 30, "2048 GB"},
}

func TestFormatSize(t *testing.T) {
	for _, tc := range formatSizeTests {
		t.Run(tc.label, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.label, FormatSize(tc.bytes))
		})
	}
}

var parseSizeTests = []struct {
	input string
	bytes int64
	error string
}{
	{"45 MB", 45 << 20, ""},
	{"3 MB", 3 << 20, ""},
	{"120 MB", 120 << 20, ""},
	{"1.5 KB", 1536, ""},
	{"700", 700, ""},
	{"2GB", 2 << 30, ""},
	{"", 0, "models.ParseSize: empty input"},
	{"MB", 0, `models.ParseSize: no leading number in "MB"`},
	{"5 parsecs", 0, `models.ParseSize: unrecognised unit in "5 parsecs"`},
}

func TestParseSize(t *testing.T) {
	for _, tc := range parseSizeTests {
		t.Run(tc.input, func(t *testing.T) {
			a := assert.New(t)

			v, err := ParseSize(tc.input)
			if tc.error != "" {
				a.EqualError(err, tc.error)
			} else {
				a.NoError(err)
				a.Equal(tc.bytes, v)
			}
		})
	}
}

func TestParseSizeOrdersAcrossUnits(t *testing.T) {
	a := assert.New(t)

	kb, err := ParseSize("900 KB")
	a.NoError(err)
	mb, err := ParseSize("1 MB")
	a.NoError(err)

	a.Less(kb, mb)
}
