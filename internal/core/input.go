package core

// Action represents a semantic input, abstracted from physical key presses
// and HTTP requests. Front ends translate their own events into actions so
// the game and the controller never see raw keys.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLeft           // A, Left arrow
	ActionRight          // D, Right arrow
	ActionRestart        // R - start a new game
	ActionQuit           // Ctrl+C - end the session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsDirectional reports whether the action steers the snake.
func (a Action) IsDirectional() bool {
	return a == ActionUp || a == ActionDown || a == ActionLeft || a == ActionRight
}

// ParseAction maps a direction name ("up", "down", "left", "right") or the
// browser key names ("ArrowUp", ...) to an action.
func ParseAction(s string) Action {
	switch s {
	case "up", "ArrowUp", "w":
		return ActionUp
	case "down", "ArrowDown", "s":
		return ActionDown
	case "left", "ArrowLeft", "a":
		return ActionLeft
	case "right", "ArrowRight", "d":
		return ActionRight
	case "restart", "r":
		return ActionRestart
	default:
		return ActionNone
	}
}
