package domain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/game/entity"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
)

// Camera is the region of the map the renderer shows, in map pixels.
type Camera struct {
	Centre grid.Vec
	// Width and Height are the visible map pixels: surface size over Zoom.
	Width  float64
	Height float64
	Zoom   float64
}

// Left returns the camera's left edge.
func (c Camera) Left() float64 { return c.Centre.X - c.Width/2 }

// Top returns the camera's top edge.
func (c Camera) Top() float64 { return c.Centre.Y - c.Height/2 }

// Right returns the camera's right edge.
func (c Camera) Right() float64 { return c.Centre.X + c.Width/2 }

// Bottom returns the camera's bottom edge.
func (c Camera) Bottom() float64 { return c.Centre.Y + c.Height/2 }

// SwitchFloor makes floor active. The camera keeps its offset from the floor
// centre, so scrolling position carries across floors. The GUI is told which
// floor button to select.
//
// Postcondition: Returns an error wrapping ErrInvalidFloor when floor is out of range.
func (d *Manager) SwitchFloor(floor int) error {
	if floor < 0 || floor >= len(d.floorPorts) {
		return fmt.Errorf("switch to floor %d of %d: %w", floor, len(d.floorPorts), ErrInvalidFloor)
	}
	var offset grid.Vec
	if d.floor >= 0 {
		c := d.floorPorts[d.floor].Centre()
		offset = grid.Vec{X: d.viewport.X - c.X, Y: d.viewport.Y - c.Y}
	}
	from := d.floor
	d.floor = floor
	c := d.floorPorts[floor].Centre()
	d.viewport = grid.Vec{X: c.X + offset.X, Y: c.Y + offset.Y}
	d.gui.SelectFloor(floor)
	if from != floor {
		d.logger.Debug("floor switched", zap.Int("from", from), zap.Int("to", floor))
	}
	return nil
}

// Zoom returns the active zoom multiplier.
func (d *Manager) Zoom() float64 { return d.cfg.ZoomLevels[d.zoomIndex] }

// ZoomIndex returns the index of the active zoom multiplier.
func (d *Manager) ZoomIndex() int { return d.zoomIndex }

// SetZoomIndex steps the zoom index by delta, clamped to the configured
// levels. When the index changes and the avatar stands on the active floor
// the camera recentres on it.
func (d *Manager) SetZoomIndex(delta int) {
	old := d.zoomIndex
	d.zoomIndex = max(0, min(d.zoomIndex+delta, len(d.cfg.ZoomLevels)-1))
	if d.zoomIndex == old {
		return
	}
	if d.avatar != nil && d.grid.FloorOf(d.avatar.Coord()) == d.floor {
		d.CentreView(d.avatar)
	}
	d.logger.Debug("zoom changed", zap.Int("index", d.zoomIndex), zap.Float64("zoom", d.Zoom()))
}

// CentreView implements entity.World.
func (d *Manager) CentreView(e *entity.Entity) {
	if e == nil {
		return
	}
	d.viewport = e.Position()
}

// Viewport returns the unclamped camera centre.
func (d *Manager) Viewport() grid.Vec { return d.viewport }

// View clamps the camera inside the active floor and returns it. The clamped
// centre replaces the stored viewport.
func (d *Manager) View() Camera {
	zoom := d.Zoom()
	w := float64(d.view.Width) / zoom
	h := float64(d.view.Height) / zoom
	left := d.viewport.X - w/2
	top := d.viewport.Y - h/2

	port := d.floorPorts[d.floor]
	if left <= float64(port.Left()) {
		left = float64(port.Left())
	} else if left+w >= float64(port.Right()) {
		left = float64(port.Right()) - w
	}
	if top <= float64(port.Top()) {
		top = float64(port.Top())
	} else if top+h >= float64(port.Bottom()) {
		top = float64(port.Bottom()) - h
	}

	d.viewport = grid.Vec{X: left + w/2, Y: top + h/2}
	return Camera{Centre: d.viewport, Width: w, Height: h, Zoom: zoom}
}

// PickCell maps a point on the view surface to the cell under it.
func (d *Manager) PickCell(sx, sy float64) grid.Cell {
	cam := d.View()
	return d.grid.CellAt(grid.Vec{
		X: cam.Centre.X + (sx-float64(d.view.Width)/2)/cam.Zoom,
		Y: cam.Centre.Y + (sy-float64(d.view.Height)/2)/cam.Zoom,
	})
}
