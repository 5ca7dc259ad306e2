package mesh

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
)

const defaultExtractChunkSize = 64

// ExtractorOption is a functional option for configuring an Extractor.
// Use the With* functions to create options that are applied directly to the
// extractor instance.
type ExtractorOption func(*extractor)

// WithWorkerPool sets the compute pool used to parallelize per-instance
// uniform math. Without a pool the extractor runs single threaded.
//
// Parameters:
//   - pool: shared dynamic worker pool
//
// Returns:
//   - ExtractorOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) ExtractorOption {
	return func(e *extractor) {
		e.pool = pool
	}
}

// WithChunkSize sets how many instances each pool task processes. Extractions
// smaller than two chunks run single threaded. Values <= 0 are treated as the
// default (64).
//
// Parameters:
//   - n: instances per task
//
// Returns:
//   - ExtractorOption: option function to apply
func WithChunkSize(n int) ExtractorOption {
	return func(e *extractor) {
		if n <= 0 {
			n = defaultExtractChunkSize
		}
		e.chunkSize = n
	}
}

// NewExtractor creates an Extractor with the given options applied.
//
// Parameters:
//   - opts: optional configuration, see the With* functions
//
// Returns:
//   - Extractor: the configured extractor
func NewExtractor(opts ...ExtractorOption) Extractor {
	e := &extractor{
		chunkSize: defaultExtractChunkSize,
		byEntity:  make(map[Entity]*Instance),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
