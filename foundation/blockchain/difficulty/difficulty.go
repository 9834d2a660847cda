// Package difficulty recalibrates the proof of work difficulty from the
// observed block production rate.
package difficulty

import (
	"time"
)

// Set of default values for the controller.
const (
	DefaultInterval        = 10
	DefaultTargetBlockTime = 10 * time.Second
	DefaultDifficulty      = 4
)

// Bounds for a difficulty value. A SHA-256 hex hash has 64 characters.
const (
	Floor   = 1
	Ceiling = 64
)

// Controller adjusts difficulty every Interval blocks by comparing the time
// it took to produce them against TargetBlockTime per block.
type Controller struct {
	Interval        uint64
	TargetBlockTime time.Duration
}

// New constructs a controller, applying defaults for zero values.
func New(interval uint64, target time.Duration) Controller {
	if interval == 0 {
		interval = DefaultInterval
	}

	if target <= 0 {
		target = DefaultTargetBlockTime
	}

	return Controller{
		Interval:        interval,
		TargetBlockTime: target,
	}
}

// Due reports whether committing the block at the specified index triggers
// an adjustment. The genesis block never does.
func (c Controller) Due(index uint64) bool {
	return c.Interval > 0 && index > 0 && index%c.Interval == 0
}

// Adjust calculates the next difficulty from the block timestamps of the
// chain, in Unix milliseconds and chain order. It measures the time between
// the block Interval+1 positions back and the most recent block. With fewer
// blocks the difficulty is unchanged.
func (c Controller) Adjust(current uint, timestamps []int64) uint {
	k := int(c.Interval)
	if k == 0 || len(timestamps) < k+1 {
		return Clamp(current)
	}

	last := timestamps[len(timestamps)-1]
	first := timestamps[len(timestamps)-k-1]

	measured := time.Duration(last-first) * time.Millisecond
	expected := c.TargetBlockTime * time.Duration(k)

	next := int(current)
	switch {
	case measured < expected/2:
		next += 2
	case measured < expected:
		next++
	case measured > expected*2:
		next -= 2
	case measured > expected:
		next--
	}

	if next < Floor {
		next = Floor
	}

	return Clamp(uint(next))
}

// Clamp keeps a difficulty within the floor and ceiling. Going under the
// floor isn't an error, the value is silently raised.
func Clamp(difficulty uint) uint {
	switch {
	case difficulty < Floor:
		return Floor
	case difficulty > Ceiling:
		return Ceiling
	}
	return difficulty
}
