package mesh

// Flags is the per-instance bitset uploaded alongside each mesh uniform. The
// shader reads it to gate shadow reception and to recover winding order for
// mirrored transforms.
type Flags uint32

const (
	// FlagShadowReceiver marks an instance that samples shadow maps.
	FlagShadowReceiver Flags = 1 << 0
	// FlagSignDeterminantModel3x3 is set when the determinant of the upper
	// 3x3 of the model matrix is non-negative. A cleared bit tells the
	// shader the transform mirrors the mesh.
	FlagSignDeterminantModel3x3 Flags = 1 << 31
)

// Has reports whether every flag in the set is present.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}
