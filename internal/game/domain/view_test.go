package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/floorsim/internal/config"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
)

func TestSwitchFloor_PreservesOffset(t *testing.T) {
	d, gui := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	// Floor 0 spans pixels 0..128, centre (64, 64).
	d.viewport = grid.Vec{X: 70, Y: 50}

	require.NoError(t, d.SwitchFloor(1))
	assert.Equal(t, 1, d.Floor())
	assert.Equal(t, grid.Vec{X: 198, Y: 50}, d.Viewport())
	assert.Equal(t, []int{0, 1}, gui.floors)

	require.NoError(t, d.SwitchFloor(0))
	assert.Equal(t, grid.Vec{X: 70, Y: 50}, d.Viewport())
}

func TestSwitchFloor_Invalid(t *testing.T) {
	d, gui := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	for _, floor := range []int{-1, 2} {
		err := d.SwitchFloor(floor)
		assert.ErrorIs(t, err, ErrInvalidFloor, "floor %d", floor)
	}
	assert.Equal(t, 0, d.Floor())
	assert.Equal(t, []int{0}, gui.floors)
}

func TestSetZoomIndex_ClampsAndRecentres(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	d.Avatar().SyncCell(d, grid.Cell{X: 1, Y: 1})
	d.viewport = grid.Vec{}

	d.SetZoomIndex(1)
	assert.Equal(t, 1, d.ZoomIndex())
	assert.Equal(t, 2.0, d.Zoom())
	assert.Equal(t, grid.Vec{X: 24, Y: 24}, d.Viewport(), "recentred on the avatar")

	d.viewport = grid.Vec{}
	d.SetZoomIndex(5)
	assert.Equal(t, 2, d.ZoomIndex())
	assert.Equal(t, grid.Vec{X: 24, Y: 24}, d.Viewport())

	d.viewport = grid.Vec{}
	d.SetZoomIndex(1)
	assert.Equal(t, 2, d.ZoomIndex())
	assert.Equal(t, grid.Vec{}, d.Viewport(), "no change, no recentre")

	d.SetZoomIndex(-9)
	assert.Equal(t, 0, d.ZoomIndex())
}

func TestSetZoomIndex_AvatarOnOtherFloor(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	d.Avatar().SyncCell(d, grid.Cell{X: 1, Y: 1})
	require.NoError(t, d.SwitchFloor(1))
	v := d.Viewport()

	d.SetZoomIndex(1)
	assert.Equal(t, 1, d.ZoomIndex())
	assert.Equal(t, v, d.Viewport())
}

func TestView_ClampsToFloor(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})

	d.viewport = grid.Vec{}
	cam := d.View()
	assert.Equal(t, Camera{Centre: grid.Vec{X: 32, Y: 32}, Width: 64, Height: 64, Zoom: 1}, cam)
	assert.Equal(t, cam.Centre, d.Viewport(), "clamped centre is stored")

	d.viewport = grid.Vec{X: 200, Y: 200}
	cam = d.View()
	assert.Equal(t, grid.Vec{X: 96, Y: 96}, cam.Centre)
	assert.Equal(t, 128.0, cam.Right())
	assert.Equal(t, 128.0, cam.Bottom())

	d.zoomIndex = 1
	d.viewport = grid.Vec{X: 64, Y: 64}
	cam = d.View()
	assert.Equal(t, grid.Vec{X: 64, Y: 64}, cam.Centre, "inside the floor stays put")
	assert.Equal(t, 32.0, cam.Width)
	assert.Equal(t, 48.0, cam.Left())
	assert.Equal(t, 48.0, cam.Top())

	require.NoError(t, d.SwitchFloor(1))
	d.viewport = grid.Vec{X: 100, Y: 64}
	cam = d.View()
	assert.Equal(t, 128.0, cam.Left(), "floor 1 starts at pixel 128")
}

func TestPropertyViewInsideFloor(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	rapid.Check(t, func(rt *rapid.T) {
		floor := rapid.IntRange(0, 1).Draw(rt, "floor")
		if err := d.SwitchFloor(floor); err != nil {
			rt.Fatalf("SwitchFloor: %v", err)
		}
		d.zoomIndex = rapid.IntRange(0, 2).Draw(rt, "zoom")
		d.viewport = grid.Vec{
			X: rapid.Float64Range(-500, 500).Draw(rt, "x"),
			Y: rapid.Float64Range(-500, 500).Draw(rt, "y"),
		}
		cam := d.View()
		port := d.floorPorts[floor]
		if cam.Left() < float64(port.Left()) || cam.Right() > float64(port.Right()) ||
			cam.Top() < float64(port.Top()) || cam.Bottom() > float64(port.Bottom()) {
			rt.Fatalf("camera %+v escapes floor %+v", cam, port)
		}
	})
}

func TestPickCell(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	d.viewport = grid.Vec{}

	assert.Equal(t, grid.Cell{X: 2, Y: 2}, d.PickCell(32, 32), "surface centre is the camera centre")
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, d.PickCell(0, 0))
	assert.Equal(t, grid.Cell{X: 3, Y: 0}, d.PickCell(63, 15))

	d.zoomIndex = 1
	d.viewport = grid.Vec{}
	assert.Equal(t, grid.Cell{X: 2, Y: 2}, d.PickCell(64, 64))
	assert.Equal(t, grid.Cell{X: 1, Y: 1}, d.PickCell(63, 63))

	require.NoError(t, d.SwitchFloor(1))
	d.zoomIndex = 0
	d.viewport = grid.Vec{}
	assert.Equal(t, grid.Cell{X: 8, Y: 0}, d.PickCell(0, 0))
}

func TestCentreView(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	d.Avatar().SyncCell(d, grid.Cell{X: 3, Y: 4})
	d.CentreView(d.Avatar())
	assert.Equal(t, grid.Vec{X: 56, Y: 72}, d.Viewport())
	d.CentreView(nil)
	assert.Equal(t, grid.Vec{X: 56, Y: 72}, d.Viewport())
	assert.True(t, d.Follows(d.Avatar()))
	assert.False(t, d.Follows(nil))
}
