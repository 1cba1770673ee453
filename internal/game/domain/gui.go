package domain

// GUI contexts selected by the avatar's state.
const (
	ContextDefault = "default"
	ContextPickUp  = "pickup_context"
	ContextPutDown = "putdown_context"
)

// GUI is the sink for the contextual controls the world drives. The domain
// never reads from it.
type GUI interface {
	// SwitchContext shows the named set of contextual buttons.
	SwitchContext(name string)
	// SelectFloor highlights the floor-select button for floor.
	SelectFloor(floor int)
}

// NopGUI discards every update.
type NopGUI struct{}

// SwitchContext implements GUI.
func (NopGUI) SwitchContext(string) {}

// SelectFloor implements GUI.
func (NopGUI) SelectFloor(int) {}
