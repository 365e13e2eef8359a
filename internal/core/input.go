package core

// Action represents a semantic gameplay action, abstracted from physical
// key presses. This allows the session to work with high-level intents
// rather than raw input.
type Action int

const (
	ActionNone    Action = iota
	ActionHitA           // Z - primary hit key
	ActionHitB           // X - alternate hit key
	ActionSkip           // Space - skip the lead-in before the first object
	ActionPause          // P, Escape - pause/unpause the session
	ActionRetry          // R - restart the current chart
	ActionQuit           // Q, Ctrl+C - leave the session
	ActionConfirm        // Enter - confirm selection in menus
	ActionBack           // B, Escape - go back in menus
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionHitA:
		return "HitA"
	case ActionHitB:
		return "HitB"
	case ActionSkip:
		return "Skip"
	case ActionPause:
		return "Pause"
	case ActionRetry:
		return "Retry"
	case ActionQuit:
		return "Quit"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state for a single simulation tick: the
// discrete actions triggered this frame plus the latest cursor position in
// playfield coordinates.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// Cursor is the pointer position in playfield space. Only meaningful
	// when CursorSet is true; otherwise the session keeps its previous
	// cursor position.
	Cursor    Vec
	CursorSet bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// SetCursor records a new cursor position for this frame.
func (f *InputFrame) SetCursor(v Vec) {
	f.Cursor = v
	f.CursorSet = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// HitPressed reports whether either of the two discrete hit inputs was
// triggered this frame.
func (f InputFrame) HitPressed() bool {
	return f.Has(ActionHitA) || f.Has(ActionHitB)
}

// Clear resets all actions and the cursor flag for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.CursorSet = false
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	clone.Cursor = f.Cursor
	clone.CursorSet = f.CursorSet
	return clone
}
