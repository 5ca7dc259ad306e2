package skin

import (
	"github.com/Carmen-Shannon/prism-go/common"
)

// zeroJoint pads arena slots that no skin reads.
var zeroJoint [16]float32

// JointArena is the frame-scoped staging area for joint matrices. All skinned
// instances of a frame append into one arena so a single buffer upload covers
// every skin. Storage is retained across Clear calls, so steady-state frames
// stage without allocating.
type JointArena struct {
	joints [][16]float32
}

// NewJointArena creates an empty arena.
//
// Returns:
//   - *JointArena: the initialized arena
func NewJointArena() *JointArena {
	return &JointArena{}
}

// Len returns the number of staged joint matrices.
func (a *JointArena) Len() int {
	return len(a.joints)
}

// Push appends one joint matrix.
//
// Parameters:
//   - m: column-major joint matrix
func (a *JointArena) Push(m [16]float32) {
	a.joints = append(a.joints, m)
}

// TruncateTo discards matrices staged past n, rolling back a partially staged
// skin.
//
// Parameters:
//   - n: length to roll back to, from a prior Len call
func (a *JointArena) TruncateTo(n int) {
	if n < 0 || n > len(a.joints) {
		return
	}
	a.joints = a.joints[:n]
}

// PadToMultipleOf4 appends zero matrices until the length is a multiple of 4.
// Joint matrices are 64 bytes, so 4-matrix alignment keeps every skin start
// at a 256 byte boundary, the dynamic offset alignment uniform bindings
// require.
func (a *JointArena) PadToMultipleOf4() {
	for len(a.joints)%4 != 0 {
		a.joints = append(a.joints, zeroJoint)
	}
}

// EnsureHeadroom appends zero matrices until at least MaxJoints matrices
// exist at and past lastStart. The joint binding has a fixed size of
// MaxJoints matrices, so the buffer must extend that far beyond the last
// skin's offset or the bind group would run off the end.
//
// Parameters:
//   - lastStart: largest skin start index recorded this frame
func (a *JointArena) EnsureHeadroom(lastStart int) {
	for len(a.joints)-lastStart < MaxJoints {
		a.joints = append(a.joints, zeroJoint)
	}
}

// Clear resets the arena for a new frame, retaining capacity.
func (a *JointArena) Clear() {
	a.joints = a.joints[:0]
}

// Bytes returns the staged matrices as a byte slice for a buffer write. The
// slice aliases the arena and is valid until the next mutation.
//
// Returns:
//   - []byte: little-endian packed joint matrices
func (a *JointArena) Bytes() []byte {
	return common.SliceToBytes(a.joints)
}
