package core

// Action represents a semantic player action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionLaneUp          // W, Up arrow - move one lane up
	ActionLaneDown        // S, Down arrow - move one lane down
	ActionFaster          // D, Right arrow - next speed step
	ActionSlower          // A, Left arrow - brake
	ActionConfirm         // Enter - confirm selection in menu
	ActionBack            // B, Escape - go back to menu
	ActionRestart         // R key - restart after the run ended
	ActionQuit            // Q, Ctrl+C - exit
	ActionPause           // P - pause/unpause
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLaneUp:
		return "LaneUp"
	case ActionLaneDown:
		return "LaneDown"
	case ActionFaster:
		return "Faster"
	case ActionSlower:
		return "Slower"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame holds the actions received between two simulation ticks,
// in arrival order. Repeated presses are kept: two speed-ups before a tick
// move two speed steps.
type InputFrame struct {
	Actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make([]Action, 0, 4)}
}

// Set appends an action to the frame.
func (f *InputFrame) Set(a Action) {
	f.Actions = append(f.Actions, a)
}

// Has returns true if the given action was received this frame.
func (f InputFrame) Has(a Action) bool {
	for _, got := range f.Actions {
		if got == a {
			return true
		}
	}
	return false
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	f.Actions = f.Actions[:0]
}
