package anim

// BuiltinManifest returns the clip set used when no manifest file is
// configured. It mirrors the usual layout of a character asset: one base
// stage with idle, move, sit, sleep and interact clips.
func BuiltinManifest() *Manifest {
	return &Manifest{
		Clips: []ClipSpec{
			{Name: "Relax", Stage: "Default", Type: TypeIdle, Duration: 2.0},
			{Name: "Move", Stage: "Default", Type: TypeMove, Duration: 1.0},
			{Name: "Sit", Stage: "Default", Type: TypeSit, Duration: 3.0, OffsetY: 12},
			{Name: "Sleep", Stage: "Default", Type: TypeSleep, Duration: 4.0},
			{Name: "Interact", Stage: "Default", Type: TypeInteract, Duration: 1.5},
			{Name: "Special", Stage: "Default", Type: TypeSpecial, Duration: 2.5},
		},
		Canvases: []CanvasSpec{
			{Stage: "Default", Width: 200, Height: 200},
		},
	}
}
