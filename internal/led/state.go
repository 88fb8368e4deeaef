package led

// Status is the blink state of the controller.
type Status int

// Controller states.
const (
	Stopped Status = iota
	Running
)

// String returns the name used by the textual status protocol.
func (s Status) String() string {
	if s == Running {
		return "start"
	}
	return "stop"
}

// Snapshot is a copy of the controller state taken under its lock.
type Snapshot struct {
	Status      Status
	FrequencyHz uint32
	Level       bool // last level written to the pin
}

// Observer receives controller notifications.
// StateChanged, TaskStarted and TaskExited are called while the controller
// lock is held; Toggled is called from the toggle task. Implementations must
// not block and must not call back into the controller.
type Observer interface {
	StateChanged(s Snapshot)
	TaskStarted()
	TaskExited()
	Toggled(high bool)
}

// NopObserver implements Observer with no-ops; embed it to pick callbacks.
type NopObserver struct{}

// StateChanged implements Observer.
func (NopObserver) StateChanged(Snapshot) {}

// TaskStarted implements Observer.
func (NopObserver) TaskStarted() {}

// TaskExited implements Observer.
func (NopObserver) TaskExited() {}

// Toggled implements Observer.
func (NopObserver) Toggled(bool) {}
