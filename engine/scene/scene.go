package scene

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/prism-go/engine/camera"
	"github.com/Carmen-Shannon/prism-go/engine/game_object"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/renderer"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/array_buffer"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/draw"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
	"github.com/Carmen-Shannon/prism-go/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Scene manages a registry of GameObjects with a Camera and Renderer and
// turns them into GPU draws through four strictly ordered frame stages:
//
//  1. Extract snapshots object state into per-frame records: visible mesh
//     instances, staged joint matrices and staged morph weights.
//  2. Prepare fills the per-object uniform buffer, grows GPU buffers to fit
//     the frame and flushes all staged writes in one batch.
//  3. Queue groups draws by pipeline variant, registers missing pipelines
//     and rebuilds the frame's mesh bind groups.
//  4. Dispatch records the queued draws into a render pass, read-only.
//
// A stage that cannot produce a resource degrades by skipping the draws that
// depend on it rather than failing the frame. Scenes can be hot-swapped via
// the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera. The new camera's bind group is
	// initialized on the GPU if it has not been already.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// MeshStore returns the scene's mesh asset store. Callers insert uploaded
	// meshes here and hand the returned handles to their GameObjects.
	//
	// Returns:
	//   - *mesh.Store: the scene's mesh store
	MeshStore() *mesh.Store

	// Count returns the number of GameObjects in the scene's registry.
	//
	// Returns:
	//   - int: count of registered GameObjects
	Count() int

	// Add adds a GameObject to the scene's registry. Objects without an ID
	// are assigned the next free one. The ID doubles as the entity key that
	// skins use to resolve joint transforms, so transform-only joint objects
	// are added the same way as drawable ones.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject from the registry by ID, along with the
	// previous-frame transform tracked for it.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects from the scene.
	// Does not release GPU resources.
	Clear()

	// Update advances object state by one tick, applying each object's
	// rotation speed. Call once per frame before Extract.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	Update(deltaTime float32)

	// Extract snapshots the registry into this frame's render input: one
	// mesh instance per visible drawable, one joint matrix range per skinned
	// object and one weight range per morphed object. Joint transforms
	// resolve against the transforms of objects in the same registry.
	// Replaces the previous frame's extraction wholesale.
	Extract()

	// Prepare uploads the extracted frame to the GPU: it packs per-object
	// uniforms into the frame's array buffer, grows the mesh, joint and
	// morph buffers when the frame outgrows them, and flushes the view
	// uniform plus all staged data in a single coalesced write batch.
	// Must be called after Extract.
	//
	// Returns:
	//   - error: buffer creation failure; the frame's draws should be skipped
	Prepare() error

	// Queue groups the prepared draws by pipeline variant, specializes and
	// registers pipelines for variants seen for the first time, and rebuilds
	// the frame's mesh bind groups. Draws whose mesh assets are not resident
	// yet are set aside and retried next frame. Must be called after Prepare.
	//
	// Parameters:
	//   - device: bind group factory, normally Renderer.Device()
	//
	// Returns:
	//   - error: layout creation, pipeline registration or bind group failure
	Queue(device bind_group_cache.Device) error

	// Dispatch records the queued draws into the pass, setting each
	// variant's pipeline once and replaying the command list per draw. The
	// scene's prepared state is read-only during dispatch. Must be called
	// within a BeginFrame/EndFrame block on the renderer.
	//
	// Parameters:
	//   - pass: the render pass encoder
	//
	// Returns:
	//   - draw.Stats: per-frame outcome counts
	Dispatch(pass draw.Pass) draw.Stats
}

// variantRun is one group of queued draws sharing a specialized pipeline.
type variantRun struct {
	id     pipeline.VariantID
	key    pipeline.FeatureKey
	layout mesh.VertexLayout
	items  []draw.Item
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[uint64]game_object.GameObject
	nextID   uint64

	cam camera.Camera
	r   renderer.Renderer

	store *mesh.Store

	// Pipeline variant state. baseKey carries the scene-wide feature
	// toggles; topology and the morph bit are added per draw in Queue.
	baseKey     pipeline.FeatureKey
	perObject   pipeline.PerObjectBinding
	specializer pipeline.Specializer

	// Frame stage collaborators.
	extractor      mesh.Extractor
	skinAllocator  skin.Allocator
	morphAllocator morph.Allocator
	cache          bind_group_cache.Cache
	dispatcher     draw.Dispatcher

	// Per-frame extraction output, replaced wholesale each Extract.
	extracted *mesh.Extracted
	skins     *skin.Allocated
	morphs    *morph.Allocated

	// transforms is this frame's entity world transform snapshot; skins
	// resolve joints against it. prevTransforms carries last frame's
	// snapshot for motion vectors.
	transforms     map[mesh.Entity][16]float32
	prevTransforms map[mesh.Entity][16]float32

	// GPU-side frame state. The providers own the buffers; the sizes track
	// current allocations so Prepare only recreates on growth.
	perObjectBuf array_buffer.ArrayBuffer[*mesh.GPUMeshUniform]
	viewBGP      bind_group_provider.BindGroupProvider
	meshBGP      bind_group_provider.BindGroupProvider
	skinBGP      bind_group_provider.BindGroupProvider
	morphBGP     bind_group_provider.BindGroupProvider
	meshBufSize  uint64
	skinBufSize  uint64
	morphBufSize uint64

	layouts     bind_group_cache.Layouts
	layoutsInit bool

	// Queued draw state for the dispatch stage.
	items    []draw.Item
	runs     []variantRun
	runIndex map[pipeline.VariantID]int
	notReady int
	failed   int

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	ids          []uint64
	meshSources  []mesh.Source
	skinSources  []skin.Source
	morphSources []morph.Source
	writePool    []bind_group_provider.BufferWrite

	// computePool manages a bounded set of reusable goroutines for the
	// parallel per-instance math in Extract. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer. Both are
// required and NewScene panics if either is nil. The camera's bind group is
// initialized on the GPU, and the per-object uniform path (storage buffer or
// batched uniform with dynamic offsets) is probed from the renderer once and
// baked into every pipeline the scene specializes.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		active:         false,
		cam:            cam,
		r:              r,
		registry:       make(map[uint64]game_object.GameObject),
		nextID:         1,
		store:          mesh.NewStore(),
		skinAllocator:  skin.NewAllocator(),
		morphAllocator: morph.NewAllocator(),
		cache:          bind_group_cache.NewCache(),
		dispatcher:     draw.NewDispatcher(),
		transforms:     make(map[mesh.Entity][16]float32),
		prevTransforms: make(map[mesh.Entity][16]float32),
		runIndex:       make(map[pipeline.VariantID]int),
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// The MSAA field must match the render pass and topology is taken from
	// each mesh, so both fields are owned by the scene regardless of the
	// features configured through options.
	s.baseKey = (s.baseKey &^ (pipeline.MSAAMask | pipeline.TopologyMask)) |
		pipeline.MSAAKey(uint32(r.SampleCount()))

	// Probe the per-object binding mode once; it shapes the shader defs, the
	// mesh bind group layouts and the uniform array's memory layout alike.
	s.perObject = pipeline.PerObjectBinding{Storage: true}
	if !r.SupportsStorageBuffers() {
		batch, _ := r.PerObjectBatchSize()
		s.perObject = pipeline.PerObjectBinding{BatchSize: batch}
	}
	if s.perObject.Storage {
		s.perObjectBuf = array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](mesh.UniformByteSize)
	} else {
		s.perObjectBuf = array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](mesh.UniformByteSize,
			array_buffer.WithUniformBatching(s.perObject.BatchSize))
	}
	s.specializer = pipeline.NewSpecializer(
		pipeline.WithSurfaceFormat(r.SurfaceFormat()),
		pipeline.WithPerObjectBinding(s.perObject),
	)

	s.meshBGP = bind_group_provider.NewBindGroupProvider(name + "_mesh_data")
	s.skinBGP = bind_group_provider.NewBindGroupProvider(name + "_joint_matrices")
	s.morphBGP = bind_group_provider.NewBindGroupProvider(name + "_morph_weights")

	// Initialize the compute pool after options so WithComputeWorkers can
	// override the default. Queue size of 256 accommodates typical
	// extraction chunk counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	s.extractor = mesh.NewExtractor(mesh.WithWorkerPool(s.computePool))

	// Initialize the camera's bind group on the GPU.
	s.viewBGP = cam.BindGroupProvider()
	if s.viewBGP != nil {
		if err := r.InitBindGroup(s.viewBGP, pipeline.ViewBindGroupLayout(), nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init view bind group: %v", err))
		}
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
	s.viewBGP = nil
	if cam == nil {
		return
	}
	s.viewBGP = cam.BindGroupProvider()
	if s.viewBGP != nil && s.viewBGP.BindGroup() == nil {
		if err := s.r.InitBindGroup(s.viewBGP, pipeline.ViewBindGroupLayout(), nil, nil); err != nil {
			logger.Error("failed to init view bind group for replacement camera",
				zap.String("scene", s.name),
				zap.Error(err))
		}
	}
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) MeshStore() *mesh.Store {
	return s.store
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
	delete(s.prevTransforms, mesh.Entity(id))
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.registry)
	clear(s.transforms)
	clear(s.prevTransforms)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.registry {
		rsx, rsy, rsz := obj.RotationSpeed()
		if rsx == 0 && rsy == 0 && rsz == 0 {
			continue
		}
		rx, ry, rz := obj.Rotation()
		obj.SetRotation(rx+rsx*deltaTime, ry+rsy*deltaTime, rz+rsz*deltaTime)
	}
}

func (s *scene) Extract() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Iterate in ID order so record slots and draw grouping are stable
	// across frames with identical input.
	s.ids = s.ids[:0]
	for id := range s.registry {
		s.ids = append(s.ids, id)
	}
	slices.Sort(s.ids)

	clear(s.transforms)
	s.meshSources = s.meshSources[:0]
	s.skinSources = s.skinSources[:0]
	s.morphSources = s.morphSources[:0]

	for _, id := range s.ids {
		obj := s.registry[id]
		e := mesh.Entity(id)
		world := obj.ModelMatrix()
		s.transforms[e] = world

		if h := obj.Mesh(); h != 0 {
			src := mesh.Source{
				Entity:            e,
				Visible:           obj.Enabled(),
				Handle:            h,
				Transform:         world,
				NotShadowCaster:   !obj.CastsShadows(),
				NotShadowReceiver: !obj.ReceivesShadows(),
			}
			if prev, ok := s.prevTransforms[e]; ok {
				p := prev
				src.PreviousTransform = &p
			}
			s.meshSources = append(s.meshSources, src)
		}
		if sk := obj.Skin(); sk != nil {
			s.skinSources = append(s.skinSources, skin.Source{Entity: e, Visible: obj.Enabled(), Skin: sk})
		}
		if w := obj.MorphWeights(); len(w) > 0 {
			s.morphSources = append(s.morphSources, morph.Source{Entity: e, Visible: obj.Enabled(), Weights: w})
		}
	}

	s.extracted = s.extractor.Extract(s.meshSources)
	s.skins = s.skinAllocator.Allocate(s.skinSources, s.jointTransform)
	s.morphs = s.morphAllocator.Allocate(s.morphSources)

	clear(s.prevTransforms)
	for e, m := range s.transforms {
		s.prevTransforms[e] = m
	}
}

// jointTransform resolves a skin joint against this frame's transform
// snapshot. Joints that name entities outside the registry report absent and
// the allocator skips their skin.
func (s *scene) jointTransform(e mesh.Entity) ([16]float32, bool) {
	m, ok := s.transforms[e]
	return m, ok
}

func (s *scene) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.perObjectBuf.Clear()
	s.items = s.items[:0]
	if s.extracted != nil {
		s.pushInstances(s.extracted.Casters)
		s.pushInstances(s.extracted.NonCasters)
	}

	if err := s.ensureBuffer(s.meshBGP, pipeline.BindingMeshUniform, s.name+"_mesh_data",
		s.perObjectBuf.ByteSize(), s.perObjectBuf.Usage(), &s.meshBufSize); err != nil {
		return fmt.Errorf("prepare mesh uniforms: %w", err)
	}

	var skinBytes, morphBytes []byte
	if s.skins != nil {
		skinBytes = s.skins.Bytes()
	}
	if s.morphs != nil {
		morphBytes = s.morphs.Bytes()
	}
	if err := s.ensureBuffer(s.skinBGP, pipeline.BindingJointMatrices, s.name+"_joint_matrices",
		uint64(len(skinBytes)), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, &s.skinBufSize); err != nil {
		return fmt.Errorf("prepare joint matrices: %w", err)
	}
	if err := s.ensureBuffer(s.morphBGP, pipeline.BindingMorphWeights, s.name+"_morph_weights",
		uint64(len(morphBytes)), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, &s.morphBufSize); err != nil {
		return fmt.Errorf("prepare morph weights: %w", err)
	}

	// Coalesce the frame's uploads into one flush.
	writes := s.writePool[:0]
	if s.viewBGP != nil {
		viewUniform := s.cam.Uniform()
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.viewBGP,
			Binding:  pipeline.BindingViewUniform,
			Data:     viewUniform.Marshal(),
		})
	}
	writes = append(writes, s.perObjectBuf.StagedWriteData(s.meshBGP, pipeline.BindingMeshUniform)...)
	if len(skinBytes) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.skinBGP,
			Binding:  pipeline.BindingJointMatrices,
			Data:     skinBytes,
		})
	}
	if len(morphBytes) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.morphBGP,
			Binding:  pipeline.BindingMorphWeights,
			Data:     morphBytes,
		})
	}
	s.r.WriteBuffers(writes)
	s.writePool = writes[:0]

	s.cam.Advance()
	return nil
}

// pushInstances packs instance uniforms into the per-object buffer and queues
// one draw item per instance. Casters are pushed before non-casters so shadow
// routing stays contiguous.
func (s *scene) pushInstances(instances []mesh.Instance) {
	for i := range instances {
		inst := &instances[i]
		idx := s.perObjectBuf.Push(&inst.Uniform)
		inst.BatchIndex = idx
		s.items = append(s.items, draw.Item{
			Entity:      inst.Entity,
			Handle:      inst.Handle,
			BufferIndex: idx,
		})
	}
}

// ensureBuffer grows a provider's buffer to fit need bytes, creating it on
// first use and doubling on growth so steady-state frames allocate nothing.
func (s *scene) ensureBuffer(provider bind_group_provider.BindGroupProvider, binding int, label string, need uint64, usage wgpu.BufferUsage, current *uint64) error {
	if need == 0 || need <= *current {
		return nil
	}
	size := max(need, *current*2)
	buf, err := s.r.CreateBuffer(label, size, usage)
	if err != nil {
		return err
	}
	if old := provider.Buffer(binding); old != nil {
		old.Release()
	}
	provider.SetBuffer(binding, buf)
	*current = size
	return nil
}

func (s *scene) Queue(device bind_group_cache.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLayouts(); err != nil {
		return err
	}

	// Group the frame's items by pipeline variant. Items whose meshes are
	// not resident yet are counted and retried next frame.
	s.runs = s.runs[:0]
	clear(s.runIndex)
	s.notReady = 0
	s.failed = 0
	for _, item := range s.items {
		m, ok := s.store.Get(item.Handle)
		if !ok {
			s.notReady++
			continue
		}
		key := s.baseKey | pipeline.TopologyKey(m.Topology)
		if m.HasMorphTargets() && s.morphStaged(item.Entity) {
			key |= pipeline.FeatureMorphTargets
		}
		id := pipeline.VariantID{Key: key, Layout: m.Layout.Attributes()}
		idx, seen := s.runIndex[id]
		if !seen {
			idx = len(s.runs)
			s.runs = append(s.runs, variantRun{id: id, key: key, layout: m.Layout})
			s.runIndex[id] = idx
		}
		s.runs[idx].items = append(s.runs[idx].items, item)
	}

	// Register pipelines for variants seen for the first time. A layout the
	// specializer rejects can never draw, so its items fail loudly instead
	// of retrying.
	for i := 0; i < len(s.runs); {
		run := &s.runs[i]
		if s.r.Pipeline(run.id) != nil {
			i++
			continue
		}
		cfg, err := s.specializer.Specialize(run.key, run.layout)
		if err != nil {
			logger.Error("pipeline specialization rejected a mesh layout",
				zap.String("scene", s.name),
				zap.String("variant", run.key.String()),
				zap.Error(err))
			s.failed += len(run.items)
			s.runs = append(s.runs[:i], s.runs[i+1:]...)
			continue
		}
		if err := s.r.RegisterPipelines(cfg); err != nil {
			return fmt.Errorf("register pipeline %s: %w", cfg.Label, err)
		}
		i++
	}

	// Rebuild the frame's bind groups. Absent bindings are passed as nil and
	// the cache leaves the matching groups out, so dependent draws miss.
	var model, joints, weights *bind_group_cache.BufferBinding
	if s.perObjectBuf.Len() > 0 {
		var window uint64 = wgpu.WholeSize
		if !s.perObject.Storage {
			window = s.perObject.BindingByteSize()
		}
		model = &bind_group_cache.BufferBinding{
			Buffer: s.meshBGP.Buffer(pipeline.BindingMeshUniform),
			Size:   window,
		}
	}
	if s.skins != nil && s.skins.Len() > 0 {
		joints = &bind_group_cache.BufferBinding{
			Buffer: s.skinBGP.Buffer(pipeline.BindingJointMatrices),
			Size:   skin.BindingByteSize,
		}
	}
	if s.morphs != nil && s.morphs.Len() > 0 {
		weights = &bind_group_cache.BufferBinding{
			Buffer: s.morphBGP.Buffer(pipeline.BindingMorphWeights),
			Size:   morph.BindingByteSize,
		}
	}
	if err := s.cache.Rebuild(device, s.layouts, model, joints, weights, s.store); err != nil {
		return fmt.Errorf("rebuild bind groups: %w", err)
	}
	return nil
}

// ensureLayouts creates the four mesh-group layout objects on first use.
// Layout compatibility is structural, so these bind interchangeably with the
// layouts the pipelines were registered against.
func (s *scene) ensureLayouts() error {
	if s.layoutsInit {
		return nil
	}
	model, err := s.r.CreateBindGroupLayout(pipeline.MeshBindGroupLayout(s.perObject, false, false))
	if err != nil {
		return fmt.Errorf("create mesh layout: %w", err)
	}
	skinned, err := s.r.CreateBindGroupLayout(pipeline.MeshBindGroupLayout(s.perObject, true, false))
	if err != nil {
		return fmt.Errorf("create skinned mesh layout: %w", err)
	}
	morphed, err := s.r.CreateBindGroupLayout(pipeline.MeshBindGroupLayout(s.perObject, false, true))
	if err != nil {
		return fmt.Errorf("create morphed mesh layout: %w", err)
	}
	skinnedMorphed, err := s.r.CreateBindGroupLayout(pipeline.MeshBindGroupLayout(s.perObject, true, true))
	if err != nil {
		return fmt.Errorf("create morphed skinned mesh layout: %w", err)
	}
	s.layouts = bind_group_cache.Layouts{
		Model:          model,
		Skinned:        skinned,
		Morphed:        morphed,
		SkinnedMorphed: skinnedMorphed,
	}
	s.layoutsInit = true
	return nil
}

// morphStaged reports whether this frame allocated morph weights for the
// entity.
func (s *scene) morphStaged(e mesh.Entity) bool {
	if s.morphs == nil {
		return false
	}
	_, ok := s.morphs.Lookup(e)
	return ok
}

func (s *scene) Dispatch(pass draw.Pass) draw.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := draw.Stats{Skipped: s.notReady, Failed: s.failed}
	if len(s.runs) == 0 {
		return stats
	}

	var viewGroup *wgpu.BindGroup
	if s.viewBGP != nil {
		viewGroup = s.viewBGP.BindGroup()
	}
	frame := draw.Frame{
		Store:     s.store,
		Cache:     s.cache,
		ViewGroup: viewGroup,
		PerObject: s.perObjectBuf,
		Skins:     s.skins,
		Morphs:    s.morphs,
	}
	for i := range s.runs {
		run := &s.runs[i]
		p := s.r.Pipeline(run.id)
		if p == nil {
			stats.Failed += len(run.items)
			continue
		}
		pass.SetPipeline(p)
		st := s.dispatcher.Draw(run.items, &frame, pass)
		stats.Drawn += st.Drawn
		stats.Skipped += st.Skipped
		stats.Failed += st.Failed
	}
	return stats
}
