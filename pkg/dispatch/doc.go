// Package dispatch runs independent units of work over a bounded
// worker pool.
//
// The platform API is I/O bound and its operations are cheap and
// independent, so bulk calls (uploading many files, starting or
// polling many jobs) fan out across a fixed number of workers while
// preserving the correspondence between inputs and outputs.
//
// Example usage:
//
//	results := dispatch.Map(ctx, jobIDs, func(ctx context.Context, id string) (struct{}, error) {
//		return struct{}{}, api.StartJob(ctx, id)
//	}, dispatch.DefaultConfig())
//
// The dispatcher:
//   - Seeds a work queue with (index, input) pairs in input order
//   - Spawns up to MaxWorkers goroutines (default 4)
//   - Records each outcome at its input index
//   - Collects per-task failures instead of aborting the batch
//
// MaxWorkers of 1 gives deterministic sequential execution, which is
// useful for tests and debugging.
package dispatch
