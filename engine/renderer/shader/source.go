package shader

import (
	_ "embed"
)

// ForwardSource is the raw WGSL source for the forward pass. A single source
// serves every pipeline variant; the defs emitted during specialization pick
// which blocks survive processing.
//
//go:embed assets/forward.wgsl
var ForwardSource string
