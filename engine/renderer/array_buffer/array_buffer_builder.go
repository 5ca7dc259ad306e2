package array_buffer

// arrayBufferConfig collects construction options before the buffer is built.
type arrayBufferConfig struct {
	batchSize uint32
}

// ArrayBufferOption configures an ArrayBuffer during construction.
type ArrayBufferOption func(*arrayBufferConfig)

// WithUniformBatching switches the buffer to batched-uniform mode with the
// given batch size. Use this on devices that report no storage buffers in the
// vertex stage; the batch size should come from the renderer's device probe
// so it matches the shader's fixed-array size.
//
// Parameters:
//   - batchSize: records per batch, clamped to at least 1
//
// Returns:
//   - ArrayBufferOption: the option to pass to NewArrayBuffer
func WithUniformBatching(batchSize uint32) ArrayBufferOption {
	return func(cfg *arrayBufferConfig) {
		if batchSize == 0 {
			batchSize = 1
		}
		cfg.batchSize = batchSize
	}
}

// NewArrayBuffer creates a new ArrayBuffer for records of the given stride.
// The default mode is storage; pass WithUniformBatching for the uniform
// fallback.
//
// Parameters:
//   - stride: the byte size every pushed record marshals to
//   - options: variadic list of ArrayBufferOption functions
//
// Returns:
//   - ArrayBuffer[T]: a new empty buffer
func NewArrayBuffer[T Record](stride uint32, options ...ArrayBufferOption) ArrayBuffer[T] {
	var cfg arrayBufferConfig
	for _, opt := range options {
		opt(&cfg)
	}
	b := &arrayBuffer[T]{
		stride:  stride,
		storage: cfg.batchSize == 0,
	}
	if !b.storage {
		b.batchSize = cfg.batchSize
		b.batchStride = alignTo(cfg.batchSize*stride, dynamicOffsetAlignment)
	}
	return b
}
