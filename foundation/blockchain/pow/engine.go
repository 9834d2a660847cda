package pow

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
)

// DefaultChunkSize is the number of nonces handed to a worker at a time.
const DefaultChunkSize = 1 << 16

// Status represents the state of a proof of work search.
type Status int32

// Set of states an engine moves through: Idle -> Searching -> Found or
// Interrupted.
const (
	Idle Status = iota
	Searching
	Found
	Interrupted
)

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Interrupted:
		return "interrupted"
	}
	return "unknown"
}

// Result is the outcome of a search. Interrupted is not an error, the caller
// may retry with a fresh snapshot.
type Result struct {
	Status Status
	Nonce  uint64
	Hash   string
	Rounds int
}

// =============================================================================

// Engine runs the proof of work search either on one goroutine or across a
// set of workers racing over contiguous chunks of the nonce space.
type Engine struct {
	searcher    Searcher
	workers     int
	chunkSize   uint64
	randomStart bool
	evHandler   func(v string, args ...any)
	state       atomic.Int32
}

// Option configures an engine.
type Option func(e *Engine)

// WithWorkers sets the number of workers. One worker means a sequential
// search.
func WithWorkers(workers int) Option {
	return func(e *Engine) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithChunkSize sets the number of nonces each worker searches per round.
func WithChunkSize(size uint64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithRandomStart makes every run begin at a random point of the nonce
// space instead of zero.
func WithRandomStart() Option {
	return func(e *Engine) {
		e.randomStart = true
	}
}

// WithSearcher replaces the CPU search backend.
func WithSearcher(searcher Searcher) Option {
	return func(e *Engine) {
		e.searcher = searcher
	}
}

// WithEvHandler provides a function to receive progress events.
func WithEvHandler(evHandler func(v string, args ...any)) Option {
	return func(e *Engine) {
		e.evHandler = evHandler
	}
}

// New constructs an engine. By default the engine is sequential and uses
// the CPU searcher.
func New(options ...Option) *Engine {
	e := Engine{
		workers:   1,
		chunkSize: DefaultChunkSize,
	}

	for _, option := range options {
		option(&e)
	}

	if e.evHandler == nil {
		e.evHandler = func(v string, args ...any) {}
	}

	if e.searcher == nil {
		e.searcher = CPU{EvHandler: e.evHandler}
	}

	return &e
}

// Workers returns the number of workers used by the engine.
func (e *Engine) Workers() int {
	return e.workers
}

// State returns the state of the most recent run.
func (e *Engine) State() Status {
	return Status(e.state.Load())
}

// Run searches for a nonce that solves the challenge at the specified
// difficulty. The search ends when a nonce is found or the context is
// cancelled. There is no internal timeout.
func (e *Engine) Run(ctx context.Context, ch Challenge, difficulty uint) Result {
	e.state.Store(int32(Searching))

	start := e.startNonce()
	e.evHandler("pow: Run: MINING: started: difficulty[%d]: workers[%d]: start[%d]", difficulty, e.workers, start)

	var res Result
	switch {
	case e.workers <= 1:
		res = e.sequential(ctx, ch, difficulty, start)
	default:
		res = e.parallel(ctx, ch, difficulty, start)
	}

	switch res.Status {
	case Found:
		e.evHandler("pow: Run: MINING: SOLVED: nonce[%d]: hash[%s]: rounds[%d]", res.Nonce, res.Hash, res.Rounds)
	default:
		e.evHandler("pow: Run: MINING: INTERRUPTED: rounds[%d]", res.Rounds)
	}

	e.state.Store(int32(res.Status))
	return res
}

// =============================================================================

// sequential searches the nonce space on the calling goroutine.
func (e *Engine) sequential(ctx context.Context, ch Challenge, difficulty uint, start uint64) Result {
	nonce, found := e.searcher.Search(ctx, ch, difficulty, Full(start))
	if !found {
		return Result{Status: Interrupted, Rounds: 1}
	}

	return Result{
		Status: Found,
		Nonce:  nonce,
		Hash:   Hex(ch.Hash(nonce)),
		Rounds: 1,
	}
}

// parallel dispatches rounds of contiguous chunks, one per worker. The first
// worker to find a nonce wins, the round context is cancelled and the other
// workers' partial work is discarded. When a round finds nothing, the next
// round starts at the next free offset.
func (e *Engine) parallel(ctx context.Context, ch Challenge, difficulty uint, start uint64) Result {
	next := start

	for round := 1; ; round++ {
		if ctx.Err() != nil || next == math.MaxUint64 {
			return Result{Status: Interrupted, Rounds: round - 1}
		}

		roundCtx, cancel := context.WithCancel(ctx)

		// Buffered so a late worker never blocks on a result nobody reads.
		results := make(chan uint64, e.workers)

		var wg sync.WaitGroup
		for i := 0; i < e.workers && next < math.MaxUint64; i++ {
			r := Range{Start: next, End: next + e.chunkSize}
			if r.End < r.Start {
				r.End = math.MaxUint64
			}
			next = r.End

			wg.Add(1)
			go func(r Range) {
				defer wg.Done()
				if nonce, found := e.searcher.Search(roundCtx, ch, difficulty, r); found {
					results <- nonce
				}
			}(r)
		}

		// Close the channel once every worker in the round has returned so
		// an unsuccessful round can be detected.
		go func() {
			wg.Wait()
			close(results)
		}()

		nonce, found := <-results
		cancel()

		if found {
			return Result{
				Status: Found,
				Nonce:  nonce,
				Hash:   Hex(ch.Hash(nonce)),
				Rounds: round,
			}
		}
	}
}

// startNonce picks where the search begins.
func (e *Engine) startNonce() uint64 {
	if !e.randomStart {
		return 0
	}

	// Leave room so the search doesn't run off the end of the nonce space.
	nBig, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0
	}

	return nBig.Uint64()
}
