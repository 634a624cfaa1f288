package hasher

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phoniks/bs/internal/logging"
)

// workerChannelCap bounds each worker intake channel: one job in flight plus
// one queued. A full channel skips that worker for the cycle, giving
// backpressure without ever blocking the coordinator.
const workerChannelCap = 2

// Hasher runs the discovery-and-hashing engine. The zero value is not usable;
// construct with New.
type Hasher struct {
	workers  int
	progress Progress
	logger   *slog.Logger
}

// Option customizes a Hasher.
type Option func(*Hasher)

// WithWorkers overrides the worker pool size. Values below one fall back to
// the logical CPU count.
func WithWorkers(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.workers = n
		}
	}
}

// WithProgress installs a progress observer for the run.
func WithProgress(p Progress) Option {
	return func(h *Hasher) {
		if p != nil {
			h.progress = p
		}
	}
}

// WithLogger attaches a logger for engine lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New constructs a Hasher with a pool sized to the logical CPU count, a no-op
// progress observer, and a no-op logger.
func New(opts ...Option) *Hasher {
	h := &Hasher{
		workers:  runtime.NumCPU(),
		progress: nopProgress{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run discovers and hashes every regular file reachable from roots,
// returning once all dispatched work has been answered. Results arrive in no
// particular order; callers needing a deterministic manifest must sort them.
// A directory listing failure or context cancellation aborts the run with no
// partial results.
func (h *Hasher) Run(ctx context.Context, roots []string) ([]Hash, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, runCtx := errgroup.WithContext(runCtx)

	results := make(chan job, h.workers*workerChannelCap)
	intakes := make([]chan job, h.workers)
	for i := range intakes {
		intake := make(chan job, workerChannelCap)
		intakes[i] = intake
		group.Go(func() error {
			return runWorker(runCtx, intake, results)
		})
	}

	st := &runState{
		pending:     newJobQueue(classifyRoots(roots)),
		outstanding: make(map[uint64]struct{}),
		nextID:      1,
		progress:    h.progress,
	}
	st.total = int64(st.pending.len())
	st.progress.SetTotal(st.total)

	h.logger.Debug("hash run starting",
		logging.Int(logging.FieldWorkers, h.workers),
		logging.Int(logging.FieldRootCount, len(roots)))

	coordErr := h.coordinate(runCtx, st, intakes, results)

	for _, intake := range intakes {
		close(intake)
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if coordErr != nil {
		return nil, coordErr
	}

	st.progress.Done()
	h.logger.Debug("hash run drained",
		logging.Int(logging.FieldFileCount, len(st.hashes)),
		logging.Uint64(logging.FieldDispatched, st.nextID-1))
	return st.hashes, nil
}

// runState is the coordinator's private bookkeeping. Workers never touch it;
// all cross-thread traffic goes over the channels.
type runState struct {
	pending     *jobQueue
	outstanding map[uint64]struct{}
	nextID      uint64
	total       int64
	hashes      []Hash
	progress    Progress
}

// coordinate is the engine's single control loop. Each cycle dispatches as
// much pending work as worker channels will accept, ingests one message, and
// then checks for completion: the run is drained once no dispatched id is
// unanswered and nothing is left in the queue.
func (h *Hasher) coordinate(ctx context.Context, st *runState, intakes []chan job, results chan job) error {
	for {
		dispatched := st.dispatch(intakes)

		// When nothing could be dispatched the only possible progress
		// is an answer from a worker, so block on the result channel
		// rather than spin. Cancellation is the one other way out.
		if dispatched {
			select {
			case msg := <-results:
				st.ingest(msg)
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		} else if len(st.outstanding) > 0 {
			select {
			case msg := <-results:
				st.ingest(msg)
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if len(st.outstanding) == 0 && st.pending.len() == 0 {
			return nil
		}
	}
}

// dispatch offers the highest-priority pending job to each worker in turn,
// minting a fresh id per successful hand-off and recording it as
// outstanding. A full channel skips that worker for this cycle.
func (st *runState) dispatch(intakes []chan job) bool {
	dispatched := false
	for _, intake := range intakes {
		if st.pending.len() == 0 {
			break
		}
		next := st.pending.peek()
		next.id = st.nextID
		select {
		case intake <- next:
			st.outstanding[st.nextID] = struct{}{}
			st.nextID++
			st.pending.pop()
			dispatched = true
		default:
		}
	}
	return dispatched
}

// ingest routes one worker message. Children discovered by a scan are queued
// for their own dispatch and leave the parent id outstanding: a scan is only
// answered in full by its closing retirement, and the worker sends children
// before that retirement, so retiring the id early would let the run drain
// while children are still in flight. Hashes and retirements are the final
// message for their id and clear it.
func (st *runState) ingest(msg job) {
	switch msg.kind {
	case jobHash, jobRetired:
		delete(st.outstanding, msg.id)
	}
	switch msg.kind {
	case jobScan:
		st.total++
		st.progress.SetTotal(st.total)
		st.progress.Describe("scan: " + msg.path)
		st.pending.push(job{kind: msg.kind, path: msg.path})
	case jobDigest:
		st.total++
		st.progress.SetTotal(st.total)
		st.pending.push(job{kind: msg.kind, path: msg.path})
	case jobHash:
		st.progress.Increment()
		st.progress.Describe("hash: " + msg.path)
		st.hashes = append(st.hashes, Hash{Path: msg.path, Sum: msg.sum})
	case jobRetired:
	}
}
