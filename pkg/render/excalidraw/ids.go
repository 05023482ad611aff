package excalidraw

import (
	"math/rand/v2"
	"strconv"
	"sync"
)

// IDGenerator supplies element identifiers and the per-element random seed
// Excalidraw uses for its hand-drawn stroke jitter.
type IDGenerator interface {
	NextID() string
	NextSeed() int
}

// Counter yields "prefix1", "prefix2", ... and seeds 1, 2, ...; scenes
// rendered with a fresh Counter are byte-for-byte reproducible.
type Counter struct {
	Prefix string

	mu   sync.Mutex
	id   int
	seed int
}

// NewCounter returns a Counter whose ids start with prefix.
func NewCounter(prefix string) *Counter { return &Counter{Prefix: prefix} }

func (c *Counter) NextID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id++
	return c.Prefix + strconv.Itoa(c.id)
}

func (c *Counter) NextSeed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed++
	return c.seed
}

const (
	idLength = 9
	maxSeed  = 100000
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Random yields nine-character base-36 ids and seeds below 100000 from a
// seeded PCG source. Two generators built with the same seed produce the
// same sequence.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random generator seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) NextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, idLength)
	for i := range b {
		b[i] = alphabet[r.rng.IntN(len(alphabet))]
	}
	return string(b)
}

func (r *Random) NextSeed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(maxSeed)
}
