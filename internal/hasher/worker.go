package hasher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// runWorker consumes jobs from intake one at a time until the channel is
// closed. Every received job is answered on results with at least one message
// carrying the same dispatch id: a hash, newly discovered child jobs followed
// by a retirement, or a bare retirement for a file that would not open.
//
// A directory that cannot be listed is fatal: the worker returns the error,
// which cancels the run. Workers only ever receive scan and digest jobs.
// scanEmit, when set, runs before a scan reports each discovered child.
// Tests use it to inject delays between emissions.
var scanEmit func(path string)

func runWorker(ctx context.Context, intake <-chan job, results chan<- job) error {
	for j := range intake {
		switch j.kind {
		case jobDigest:
			sum, ok, err := digestFile(j.path)
			if err != nil {
				return err
			}
			out := job{id: j.id, kind: jobRetired}
			if ok {
				out = job{id: j.id, kind: jobHash, path: j.path, sum: sum}
			}
			if err := emit(ctx, results, out); err != nil {
				return err
			}
		case jobScan:
			entries, err := os.ReadDir(j.path)
			if err != nil {
				return fmt.Errorf("list directory %s: %w", j.path, err)
			}
			for _, entry := range entries {
				// DirEntry.Type reports the entry's own mode, so
				// symlinks stay symlinks and are skipped here.
				child, ok := classifyMode(filepath.Join(j.path, entry.Name()), entry.Type())
				if !ok {
					continue
				}
				child.id = j.id
				if scanEmit != nil {
					scanEmit(child.path)
				}
				if err := emit(ctx, results, child); err != nil {
					return err
				}
			}
			if err := emit(ctx, results, job{id: j.id, kind: jobRetired}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("worker received non-work job kind %d", j.kind)
		}
	}
	return nil
}

// emit sends one message to the coordinator, abandoning the send when the run
// is cancelled so a stopped coordinator never strands a worker.
func emit(ctx context.Context, results chan<- job, j job) error {
	select {
	case results <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
