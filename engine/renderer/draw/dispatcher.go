package draw

import (
	"errors"

	"github.com/Carmen-Shannon/prism-go/engine/renderer/pipeline"
)

// Stats summarizes one dispatch: how many items drew, how many were skipped
// waiting on assets, and how many failed an internal invariant.
type Stats struct {
	Drawn int
	// Skipped counts items whose mesh assets were not ready. They retry next
	// frame; nothing is logged.
	Skipped int
	// Failed counts invariant violations, already logged when they occurred.
	Failed int
}

// dispatcher is the implementation of the Dispatcher interface.
type dispatcher struct {
	commands []Command
}

// Dispatcher records the frame's queued draws by running the ordered command
// list over every item. A failing item never aborts the frame; the dispatcher
// accounts for it and moves on.
type Dispatcher interface {
	// Draw records all items into the pass.
	//
	// Parameters:
	//   - items: the queued draws, in submission order
	//   - frame: the frame's prepared state
	//   - pass: the render pass encoder
	//
	// Returns:
	//   - Stats: per-frame outcome counts
	Draw(items []Item, frame *Frame, pass Pass) Stats
}

var _ Dispatcher = &dispatcher{}

// NewDispatcher creates a Dispatcher over a command list. With no arguments
// it uses the standard forward sequence: view bind group, mesh bind group,
// draw.
//
// Parameters:
//   - commands: the ordered command list, empty for the default
//
// Returns:
//   - Dispatcher: the initialized dispatcher
func NewDispatcher(commands ...Command) Dispatcher {
	if len(commands) == 0 {
		commands = []Command{
			SetViewBindGroup{Slot: pipeline.GroupView},
			SetMeshBindGroup{Slot: pipeline.GroupMesh},
			DrawMesh{},
		}
	}
	return &dispatcher{commands: commands}
}

func (d *dispatcher) Draw(items []Item, frame *Frame, pass Pass) Stats {
	var stats Stats
	for i := range items {
		if err := d.renderItem(&items[i], frame, pass); err != nil {
			if errors.Is(err, ErrMeshNotReady) {
				stats.Skipped++
			} else {
				stats.Failed++
			}
			continue
		}
		stats.Drawn++
	}
	return stats
}

func (d *dispatcher) renderItem(item *Item, frame *Frame, pass Pass) error {
	for _, cmd := range d.commands {
		if err := cmd.Render(item, frame, pass); err != nil {
			return err
		}
	}
	return nil
}
