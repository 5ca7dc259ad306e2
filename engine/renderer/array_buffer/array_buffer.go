package array_buffer

import (
	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// dynamicOffsetAlignment is the byte alignment required of every dynamic
// offset passed to SetBindGroup. Batch starts in uniform mode are padded to
// this boundary.
const dynamicOffsetAlignment = 256

// Record is any fixed-size GPU record that can pack itself into little-endian
// bytes. Every record pushed into one buffer must marshal to the same length,
// which the buffer is told at construction as its stride.
type Record interface {
	Marshal() []byte
}

// arrayBuffer is the implementation of the ArrayBuffer interface.
type arrayBuffer[T Record] struct {
	stride      uint32
	storage     bool
	batchSize   uint32
	batchStride uint32
	data        []byte
	count       uint32
}

// ArrayBuffer accumulates one frame's per-object records CPU-side and shapes
// them for whichever binding mode the device supports. In storage mode the
// records form a single contiguous run indexed by instance index. In
// batched-uniform mode (devices without storage buffers in the vertex stage)
// records are packed into fixed-size batches; each draw binds its batch with
// one dynamic offset and selects its record by instance index within the
// batch. The buffer is cleared and refilled every frame by a single writer.
type ArrayBuffer[T Record] interface {
	// Clear drops all records while keeping the underlying allocation for
	// reuse next frame.
	Clear()

	// Push appends one record and returns its global index.
	//
	// Parameters:
	//   - item: the record to append, Marshal must return exactly Stride bytes
	//
	// Returns:
	//   - uint32: the global index of the record
	Push(item T) uint32

	// Len returns the number of records pushed since the last Clear.
	//
	// Returns:
	//   - int: the record count
	Len() int

	// Stride returns the byte size of one record.
	//
	// Returns:
	//   - uint32: the record stride
	Stride() uint32

	// Storage reports whether the buffer is in storage mode.
	//
	// Returns:
	//   - bool: true for storage mode, false for batched-uniform mode
	Storage() bool

	// BatchSize returns the number of records per batch in batched-uniform
	// mode. The same count drives the shader's fixed-array declaration.
	//
	// Returns:
	//   - uint32: records per batch, 0 in storage mode
	//   - bool: true when batched-uniform mode is active
	BatchSize() (uint32, bool)

	// DynamicOffset returns the byte offset of the batch holding a record,
	// for the bind call of the draw that reads it.
	//
	// Parameters:
	//   - index: a global record index returned by Push
	//
	// Returns:
	//   - uint32: the batch start offset, always 0 in storage mode
	DynamicOffset(index uint32) uint32

	// InstanceIndex returns the instance index the draw call must use so the
	// shader addresses the record: the index within its batch in
	// batched-uniform mode, the global index in storage mode.
	//
	// Parameters:
	//   - index: a global record index returned by Push
	//
	// Returns:
	//   - uint32: the first-instance value for the draw
	InstanceIndex(index uint32) uint32

	// Bytes returns the packed records padded out to ByteSize. The slice is
	// only valid until the next Push or Clear.
	//
	// Returns:
	//   - []byte: the packed frame data, empty when no records are staged
	Bytes() []byte

	// ByteSize returns the GPU allocation the current contents need. In
	// batched-uniform mode this covers the full binding window of the last
	// batch, so a dynamically offset bind of any record validates.
	//
	// Returns:
	//   - uint64: the required buffer size in bytes
	ByteSize() uint64

	// Usage returns the buffer usage flags for the active mode.
	//
	// Returns:
	//   - wgpu.BufferUsage: storage or uniform, both with copy-dst
	Usage() wgpu.BufferUsage

	// StagedWriteData returns the pending buffer write covering this frame's
	// records, targeting the given provider binding. The renderer submits it
	// via WriteBuffers.
	//
	// Parameters:
	//   - provider: the provider owning the destination buffer
	//   - binding: the binding slot of the destination buffer
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: one write, or nil when empty
	StagedWriteData(provider bind_group_provider.BindGroupProvider, binding int) []bind_group_provider.BufferWrite
}

var _ ArrayBuffer[Record] = &arrayBuffer[Record]{}

// BatchSizeFor computes how many stride-sized records fit in one uniform
// binding window, the batch size batched-uniform mode uses.
//
// Parameters:
//   - maxBindingSize: the device's maximum uniform buffer binding size
//   - stride: the byte size of one record
//
// Returns:
//   - uint32: records per batch, at least 1
func BatchSizeFor(maxBindingSize, stride uint32) uint32 {
	if stride == 0 {
		return 1
	}
	n := maxBindingSize / stride
	if n == 0 {
		n = 1
	}
	return n
}

func (b *arrayBuffer[T]) Clear() {
	b.data = b.data[:0]
	b.count = 0
}

func (b *arrayBuffer[T]) Push(item T) uint32 {
	index := b.count
	if !b.storage && index%b.batchSize == 0 {
		// New batch: pad to the aligned batch start.
		start := int(index / b.batchSize * b.batchStride)
		if len(b.data) < start {
			b.data = append(b.data, make([]byte, start-len(b.data))...)
		}
	}
	b.data = append(b.data, item.Marshal()...)
	b.count++
	return index
}

func (b *arrayBuffer[T]) Len() int {
	return int(b.count)
}

func (b *arrayBuffer[T]) Stride() uint32 {
	return b.stride
}

func (b *arrayBuffer[T]) Storage() bool {
	return b.storage
}

func (b *arrayBuffer[T]) BatchSize() (uint32, bool) {
	if b.storage {
		return 0, false
	}
	return b.batchSize, true
}

func (b *arrayBuffer[T]) DynamicOffset(index uint32) uint32 {
	if b.storage {
		return 0
	}
	return index / b.batchSize * b.batchStride
}

func (b *arrayBuffer[T]) InstanceIndex(index uint32) uint32 {
	if b.storage {
		return index
	}
	return index % b.batchSize
}

func (b *arrayBuffer[T]) Bytes() []byte {
	if total := int(b.ByteSize()); len(b.data) < total {
		b.data = append(b.data, make([]byte, total-len(b.data))...)
	}
	return b.data
}

func (b *arrayBuffer[T]) ByteSize() uint64 {
	if b.count == 0 {
		return 0
	}
	if b.storage {
		return uint64(b.count) * uint64(b.stride)
	}
	lastBatch := (b.count - 1) / b.batchSize
	return uint64(lastBatch)*uint64(b.batchStride) + uint64(b.batchSize)*uint64(b.stride)
}

func (b *arrayBuffer[T]) Usage() wgpu.BufferUsage {
	if b.storage {
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}
	return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
}

func (b *arrayBuffer[T]) StagedWriteData(provider bind_group_provider.BindGroupProvider, binding int) []bind_group_provider.BufferWrite {
	if b.count == 0 {
		return nil
	}
	return []bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  binding,
		Offset:   0,
		Data:     b.Bytes(),
	}}
}

// alignTo rounds n up to the next multiple of alignment.
func alignTo(n, alignment uint32) uint32 {
	return (n + alignment - 1) / alignment * alignment
}
