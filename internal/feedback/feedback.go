// Package feedback names the side-effect signals the stores emit on
// mutations. The shell decides how to render them (haptics, sound, a
// status line); the stores only fire and forget.
package feedback

type Event string

const (
	Success   Event = "success"
	Warning   Event = "warning"
	Error     Event = "error"
	Selection Event = "selection"
	Light     Event = "light"
	Medium    Event = "medium"
)

// Signaler receives feedback events. Implementations must not block.
type Signaler func(Event)

// Discard ignores every event. Used when no shell is attached.
func Discard(Event) {}
