package scene

import (
	"github.com/Carmen-Shannon/prism-go/engine/game_object"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/pipeline"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene's registry.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj.ID() == 0 {
				obj.SetID(s.nextID)
				s.nextID++
			} else if obj.ID() >= s.nextID {
				s.nextID = obj.ID() + 1
			}
			s.registry[obj.ID()] = obj
		}
	}
}

// WithFeatures sets the scene-wide feature toggles baked into every pipeline
// the scene specializes: tonemapping, dithering, alpha-mask discard, blend
// mode and the rest. The MSAA field is owned by the scene (it must match the
// renderer's render pass) and the topology field is taken from each mesh, so
// both are overwritten.
//
// Parameters:
//   - key: the feature key carrying the scene's toggles
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFeatures(key pipeline.FeatureKey) SceneBuilderOption {
	return func(s *scene) {
		s.baseKey = key
	}
}

// WithComputeWorkers sets the number of worker goroutines used for the
// parallel per-instance math in Extract. Values below 1 keep the default of
// runtime.NumCPU()-1. Higher values may improve throughput for scenes with
// thousands of drawables; lower values reduce scheduling overhead for simple
// scenes.
//
// Parameters:
//   - n: the number of compute workers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n >= 1 {
			s.computeWorkers = n
		}
	}
}
