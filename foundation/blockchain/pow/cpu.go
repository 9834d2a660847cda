package pow

import (
	"context"
)

// checkInterval is how many attempts are made between checks of the
// context. Cancellation is cooperative and best effort.
const checkInterval = 1 << 12

// reportInterval is how many attempts are made between progress events.
const reportInterval = 1_000_000

// CPU searches nonces on the calling goroutine. It implements the
// Searcher interface.
type CPU struct {
	EvHandler func(v string, args ...any)
}

// Search walks the range in order and returns the first nonce whose block
// hash has difficulty leading zeros.
func (c CPU) Search(ctx context.Context, ch Challenge, difficulty uint, r Range) (uint64, bool) {
	buf := make([]byte, 0, len(ch.Prefix)+20+len(ch.Suffix))

	var attempts uint64
	for nonce := r.Start; nonce < r.End; nonce++ {
		if attempts%checkInterval == 0 && ctx.Err() != nil {
			return 0, false
		}

		attempts++
		if c.EvHandler != nil && attempts%reportInterval == 0 {
			c.EvHandler("pow: Search: MINING: range[%d:%d]: attempts[%d]", r.Start, r.End, attempts)
		}

		if isSumSolved(difficulty, ch.hash(buf, nonce)) {
			return nonce, true
		}
	}

	return 0, false
}
