package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents the control commands a pet accepts.
type CommandType string

const (
	CommandStatus      CommandType = "STATUS"
	CommandKeepAnim    CommandType = "KEEP_ANIM"
	CommandTransparent CommandType = "TRANSPARENT"
	CommandStage       CommandType = "STAGE"
	CommandReload      CommandType = "RELOAD"
	CommandQuit        CommandType = "QUIT"
)

// Request represents an IPC request from client to pet.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from pet to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the pet state returned by STATUS.
type StatusData struct {
	Ordinal       int      `json:"ordinal"`
	PID           int      `json:"pid"`
	WindowID      uint32   `json:"window_id"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	VelocityX     float64  `json:"velocity_x"`
	VelocityY     float64  `json:"velocity_y"`
	Animation     string   `json:"animation"`
	Stage         string   `json:"stage"`
	Stages        []string `json:"stages"`
	KeepAnim      bool     `json:"keep_anim"`
	Transparent   bool     `json:"transparent"`
	Dragging      bool     `json:"dragging"`
	Dropping      bool     `json:"dropping"`
	Grounded      bool     `json:"grounded"`
	FPS           int      `json:"fps"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

// TogglePayload is the payload of KEEP_ANIM and TRANSPARENT.
type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

// StagePayload is the payload of STAGE. An empty stage selects the next one.
type StagePayload struct {
	Stage string `json:"stage,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		raw = b
	}
	return &Response{Status: "OK", Data: raw}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: "ERROR", Error: errMsg}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
