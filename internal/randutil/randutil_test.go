package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := assert.New(t)

	x, y := New(42), New(42)

	for i := 0; i < 10; i++ {
		a.Equal(x.Intn(100), y.Intn(100))
		a.Equal(x.Float64(), y.Float64())
	}
}

func TestRanges(t *testing.T) {
	a := assert.New(t)

	r := New(0)

	for i := 0; i < 100; i++ {
		a.Less(r.Intn(3), 3)

		f := r.Float64()
		a.GreaterOrEqual(f, 0.0)
		a.Less(f, 1.0)
	}
}
