// pkg/engine/command.go
package engine

// CommandKind selects what a Command does.
type CommandKind int

const (
	// CommandNone is ignored.
	CommandNone CommandKind = iota
	// CommandForward sets the commanded forward speed to Value.
	CommandForward
	// CommandAngular sets the commanded angular rate to Value.
	CommandAngular
	// CommandQuit asks the caller to stop the run.
	CommandQuit
)

func (k CommandKind) String() string {
	switch k {
	case CommandNone:
		return "none"
	case CommandForward:
		return "forward"
	case CommandAngular:
		return "angular"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a control input for the vessel. Commands overwrite the current
// setting; they never accumulate.
type Command struct {
	Kind  CommandKind
	Value float64
}

// Forward returns a command setting the forward speed.
func Forward(speed float64) Command {
	return Command{Kind: CommandForward, Value: speed}
}

// Angular returns a command setting the angular rate.
func Angular(rate float64) Command {
	return Command{Kind: CommandAngular, Value: rate}
}

// Quit returns a command ending the run.
func Quit() Command {
	return Command{Kind: CommandQuit}
}
