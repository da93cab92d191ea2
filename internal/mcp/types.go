package mcp

// ListPetsInput is the input for the list_pets tool.
type ListPetsInput struct{}

// PetInfo describes one registered pet.
type PetInfo struct {
	Ordinal   int    `json:"ordinal"`
	PID       int    `json:"pid"`
	WindowID  uint32 `json:"window_id"`
	JoinedAt  string `json:"joined_at"`
	Reachable bool   `json:"reachable"`
	Animation string `json:"animation,omitempty"`
}

// ListPetsOutput is the output for the list_pets tool.
type ListPetsOutput struct {
	Pets []PetInfo `json:"pets"`
}

// PetStatusInput is the input for the pet_status tool.
type PetStatusInput struct {
	Pet int `json:"pet" jsonschema:"Ordinal of the pet to inspect (see list_pets)"`
}

// PetStatusOutput is the output for the pet_status tool.
type PetStatusOutput struct {
	Ordinal     int      `json:"ordinal"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	VelocityX   float64  `json:"velocity_x"`
	VelocityY   float64  `json:"velocity_y"`
	Animation   string   `json:"animation"`
	Stage       string   `json:"stage"`
	Stages      []string `json:"stages"`
	KeepAnim    bool     `json:"keep_anim"`
	Transparent bool     `json:"transparent"`
	Dragging    bool     `json:"dragging"`
	Dropping    bool     `json:"dropping"`
	Grounded    bool     `json:"grounded"`
}

// PetCommandInput is the input for the pet_command tool.
type PetCommandInput struct {
	Pet     int    `json:"pet" jsonschema:"Ordinal of the pet to control"`
	Command string `json:"command" jsonschema:"One of keep_anim, transparent, stage, reload, quit"`
	Enabled *bool  `json:"enabled,omitempty" jsonschema:"On/off switch for keep_anim and transparent (default: true)"`
	Stage   string `json:"stage,omitempty" jsonschema:"Stage name for the stage command; empty cycles to the next stage"`
}

// PetCommandOutput is the output for the pet_command tool.
type PetCommandOutput struct {
	Pet     int    `json:"pet"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
}
