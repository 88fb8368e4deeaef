package events

// Event type constants for kelindar/event.
const (
	TypeLEDStateChanged uint32 = iota + 1
	TypeCommandRejected
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LEDStateChangedEvent is published on every accepted controller transition.
type LEDStateChangedEvent struct {
	Status      string `json:"status" example:"start" doc:"Blink status: start or stop"`
	FrequencyHz uint32 `json:"frequency_hz" example:"5" doc:"Blink frequency in Hz"`
	Level       bool   `json:"level" example:"false" doc:"Last level written to the pin"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDStateChangedEvent.
func (e LEDStateChangedEvent) Type() uint32 { return TypeLEDStateChanged }

// CommandRejectedEvent is published when a written command cannot be parsed.
type CommandRejectedEvent struct {
	Command   string `json:"command" example:"banana" doc:"Raw command text"`
	Reason    string `json:"reason" example:"unknown command" doc:"Why the command was rejected"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CommandRejectedEvent.
func (e CommandRejectedEvent) Type() uint32 { return TypeCommandRejected }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
