// Package chaos generates hostile inputs for tests: corrupted workload text
// and random operation streams against the statement cache.
package chaos

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// Mutation is one way of damaging a workload source.
type Mutation int

const (
	DropQuote Mutation = iota
	DuplicateWord
	SwapWords
	Truncate
	InsertByte
	DeleteByte
	InvalidUTF8
	mutationCount
)

// Corruptor damages workload sources. The same seed always produces the
// same damage.
type Corruptor struct {
	rng *rand.Rand
}

// NewCorruptor creates a Corruptor with the given seed.
func NewCorruptor(seed uint64) *Corruptor {
	return &Corruptor{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Corrupt applies one random mutation to src.
func (c *Corruptor) Corrupt(src string) string {
	if src == "" {
		return string(rune('a' + c.rng.IntN(26)))
	}
	return c.apply(Mutation(c.rng.IntN(int(mutationCount))), src)
}

// Corpus returns count variants of valid, each damaged one to three times.
func (c *Corruptor) Corpus(valid string, count int) []string {
	corpus := make([]string, count)
	for i := range corpus {
		out := valid
		for n := c.rng.IntN(3) + 1; n > 0; n-- {
			out = c.Corrupt(out)
		}
		corpus[i] = out
	}
	return corpus
}

func (c *Corruptor) apply(m Mutation, src string) string {
	switch m {
	case DropQuote:
		if i := c.indexOf(src, '"'); i >= 0 {
			return src[:i] + src[i+1:]
		}
	case DuplicateWord, SwapWords:
		words := strings.Fields(src)
		if len(words) < 2 {
			break
		}
		i, j := c.rng.IntN(len(words)), c.rng.IntN(len(words))
		if m == DuplicateWord {
			words = slices.Insert(words, i, words[i])
		} else {
			words[i], words[j] = words[j], words[i]
		}
		return strings.Join(words, " ")
	case Truncate:
		return src[:c.rng.IntN(len(src))]
	case InsertByte:
		i := c.rng.IntN(len(src) + 1)
		return src[:i] + string(byte(c.rng.IntN(128))) + src[i:]
	case DeleteByte:
		i := c.rng.IntN(len(src))
		return src[:i] + src[i+1:]
	case InvalidUTF8:
		i := c.rng.IntN(len(src))
		return src[:i] + "\xc0\xff" + src[i:]
	}
	return src
}

// indexOf returns the position of a random occurrence of b, or -1.
func (c *Corruptor) indexOf(s string, b byte) int {
	var hits []int
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return -1
	}
	return hits[c.rng.IntN(len(hits))]
}

// OpKind is a statement cache operation.
type OpKind int

const (
	OpLookup OpKind = iota
	OpInsert
	OpRemove
	OpClear
)

// Op is one step of a random cache workload. Key indexes a caller-owned
// key table.
type Op struct {
	Kind OpKind
	Key  int
}

// Ops returns n random operations over keys distinct keys. Clear is rare
// so that eviction pressure builds up between resets.
func Ops(seed uint64, n, keys int) []Op {
	rng := rand.New(rand.NewPCG(seed, ^seed))
	ops := make([]Op, n)
	for i := range ops {
		op := Op{Key: rng.IntN(keys)}
		switch r := rng.IntN(100); {
		case r < 45:
			op.Kind = OpLookup
		case r < 90:
			op.Kind = OpInsert
		case r < 99:
			op.Kind = OpRemove
		default:
			op.Kind = OpClear
		}
		ops[i] = op
	}
	return ops
}
