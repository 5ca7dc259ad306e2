package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides the platform surface the renderer draws into. The surface
// descriptor, pixel size and resize events are the whole contract; input
// handling beyond closing the window is out of scope.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is
	// resized. Dimensions are in pixels, which differ from screen coordinates
	// on high-DPI displays.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating
	// a WebGPU surface. The descriptor is platform-appropriate (Windows HWND,
	// X11 Xlib, Wayland, macOS Metal).
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if
	//     the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true while the window is open.
	//
	// Returns:
	//   - bool: true if the window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the close operation fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window
	// is closed. Must run on the goroutine that created the window so platform
	// event delivery stays on the main thread.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// Resize bounds enforced by the platform window. Zero means unconstrained
	// on that axis.
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	// Current framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window state (glfwWindow).
	internalWindow any

	onResize func(width, height int)
}

var _ Window = &engineWindow{}

// NewWindow creates a Window with the specified options and spawns the
// platform window. Panics if the platform window cannot be created, since
// nothing downstream can run without a surface.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "prism",
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
