package randutil

import (
	"math/rand"
	"sync"
	"time"
)

// Locked is a *rand.Rand that can be shared between goroutines.
type Locked struct {
	m sync.Mutex
	r *rand.Rand
}

// New seeds from the clock when seed is zero.
func New(seed int64) *Locked {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Locked{r: rand.New(rand.NewSource(seed))}
}

func (l *Locked) Intn(n int) int {
	l.m.Lock()
	defer l.m.Unlock()

	return l.r.Intn(n)
}

func (l *Locked) Float64() float64 {
	l.m.Lock()
	defer l.m.Unlock()

	return l.r.Float64()
}
