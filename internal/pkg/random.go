package pkg

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Rand is a seedable random source that is safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand - seed 0 means "seed from crypto/rand".
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err == nil {
			seed = binary.LittleEndian.Uint64(buf[:])
		}
	}

	return &Rand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint: gosec // game randomness
}

func (that *Rand) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.IntN(n)
}

func (that *Rand) Shuffle(n int, swap func(i, j int)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rnd.Shuffle(n, swap)
}
