package models

// DeviceWriteRequest carries one command for the device command channel.
type DeviceWriteRequest struct {
	Body struct {
		Command string `json:"command" example:"freq 5" doc:"Command text: start, stop, freq <n>, on or off"`
	}
}

// DeviceWriteData reports how much of the command was consumed.
type DeviceWriteData struct {
	Written int `json:"written" example:"6" doc:"Bytes consumed; always the full command on success"`
}

// DeviceWriteResponse wraps DeviceWriteData for API responses.
type DeviceWriteResponse struct {
	Body DeviceWriteData
}

// DeviceReadRequest selects a chunk of the status text.
type DeviceReadRequest struct {
	Offset int64 `query:"offset" minimum:"0" default:"0" doc:"Byte offset into the status text"`
	Length int   `query:"length" minimum:"1" maximum:"4096" default:"4096" doc:"Maximum bytes to return"`
}

// DeviceReadResponse is a raw chunk of the status text. An empty body marks the end.
type DeviceReadResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// DeviceStatusData is the controller state as JSON.
type DeviceStatusData struct {
	Status      string `json:"status" example:"start" enum:"start,stop" doc:"Blink status"`
	FrequencyHz uint32 `json:"frequency_hz" example:"5" doc:"Blink frequency in Hz"`
	Level       bool   `json:"level" example:"true" doc:"Last level written to the pin"`
	Backend     string `json:"backend" example:"mmio" doc:"GPIO register backend"`
	Pin         int    `json:"pin" example:"17" doc:"BCM pin number"`
}

// DeviceStatusResponse wraps DeviceStatusData for API responses.
type DeviceStatusResponse struct {
	Body DeviceStatusData
}
