// Package rng provides the deterministic random streams every generator
// in the engine draws from. Two generators coexist: a keyed hash stream
// for coordinate-derived randomness, and a bit-exact LCG for NPC
// regeneration. Nothing here touches a global source.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Stream is a deterministic float64 source in [0, 1).
type Stream interface {
	Float() float64
}

// Keyed derives an independent stream from a base seed and an ordered
// tuple of string parts. The key is "base|part1|part2|…"; its SHA-256's
// first 32 bits seed a mulberry-style mixer.
func Keyed(base uint32, parts ...string) Stream {
	key := fmt.Sprintf("%d|%s", base, strings.Join(parts, "|"))
	sum := sha256.Sum256([]byte(key))
	return &mulberry{s: binary.BigEndian.Uint32(sum[:4])}
}

// mulberry is a mulberry32 mixer. One 32-bit state word, full period.
type mulberry struct {
	s uint32
}

func (m *mulberry) Float() float64 {
	m.s += 0x6D2B79F5
	z := m.s
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0
}

// LCG is the canonical generator for NPC generation:
// s ← (1103515245·s + 12345) mod 2³¹, Float returns s/2³¹.
// Bit-reproducible across implementations; the draw order of its
// consumers is part of their contract.
type LCG struct {
	s int64
}

// NewLCG creates an LCG seeded with the given value.
func NewLCG(seed uint32) *LCG {
	return &LCG{s: int64(seed)}
}

const lcgMod = int64(1) << 31

func (l *LCG) Float() float64 {
	l.s = (1103515245*l.s + 12345) % lcgMod
	return float64(l.s) / float64(lcgMod)
}

// RndInt returns a uniformly-distributed integer in [min, max] inclusive,
// drawn from the keyed stream for (base, parts).
func RndInt(base uint32, parts []string, min, max int) int {
	if max < min {
		min, max = max, min
	}
	f := Keyed(base, parts...).Float()
	return min + int(f*float64(max-min+1))
}

// IntFrom draws a uniformly-distributed integer in [min, max] inclusive
// from an already-open stream.
func IntFrom(s Stream, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + int(s.Float()*float64(max-min+1))
}

// Choice picks one element uniformly from items using the stream.
// Panics on an empty slice; callers guarantee non-empty inputs.
func Choice[T any](s Stream, items []T) T {
	return items[IntFrom(s, 0, len(items)-1)]
}

// Weighted is an item with a selection weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// WeightedChoice selects an item proportionally to its weight. Items with
// non-positive weight are never selected unless all weights are
// non-positive, in which case the first item is returned.
func WeightedChoice[T any](s Stream, items []Weighted[T]) T {
	total := 0.0
	for _, it := range items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	if total <= 0 {
		return items[0].Item
	}
	r := s.Float() * total
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		r -= it.Weight
		if r < 0 {
			return it.Item
		}
	}
	return items[len(items)-1].Item
}

// HashSeed derives a 32-bit world seed from free text (used when the
// player's opening prompt carries no explicit seed).
func HashSeed(text string) uint32 {
	sum := sha256.Sum256([]byte(text))
	return binary.BigEndian.Uint32(sum[:4])
}
