// Package events implements the core's bit-flagged event bus: a list of
// live subscriptions delivered to sequentially, on the single serialization
// boundary the supervisor owns.
package events

// Kind is a bitflag set of event categories. Multiple bits may be OR'd to
// express "any of these". Wire values are stable and must not be
// renumbered.
type Kind uint32

const (
	FSFileContent Kind = 1 << iota
	FSDirectory
	FSCommand
	FSCwd
)

// Timer is the monotonic timer tick bit. Its value is fixed independently
// of the filesystem-kind bits above so it is always distinguishable via
// kinds & Timer != 0.
const Timer Kind = 0x10000

// Has reports whether any bit in other is set in k.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

// Data is the payload delivered alongside a dispatch. Path is populated for
// filesystem-kind events (the match key a task compares against its own
// expected probe paths); Command is populated for FSCommand events.
type Data struct {
	Path    string
	Content string
	Command string
}

// Task is anything the bus can dispatch to. Subscribers register with the
// supervisor (H), which forwards subscription requests to the bus.
type Task interface {
	Name() string
	OnInit()
	OnTool()
	HandleEvent(kinds Kind, data Data) bool
}
