package hotkeys

import (
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/pet"
)

// Pet is the part of a running pet that hotkeys drive.
type Pet interface {
	Status() pet.Status
	SetTransparent(on bool) error
	SetKeepAnim(on bool) error
	ChangeStage(stage string) error
}

// Binding ties a key sequence to a pet action.
type Binding struct {
	Name string
	Keys string
	Run  func() error
}

// Bindings returns the configured bindings for p. Actions with an empty key
// sequence are left out.
func Bindings(cfg config.HotkeysConfig, p Pet) []Binding {
	all := []Binding{
		{
			Name: "toggle_transparent",
			Keys: cfg.ToggleTransparent,
			Run:  func() error { return p.SetTransparent(!p.Status().Transparent) },
		},
		{
			Name: "toggle_keep_anim",
			Keys: cfg.ToggleKeepAnim,
			Run:  func() error { return p.SetKeepAnim(!p.Status().KeepAnim) },
		},
		{
			Name: "next_stage",
			Keys: cfg.NextStage,
			Run:  func() error { return p.ChangeStage("") },
		},
	}
	out := all[:0]
	for _, b := range all {
		if b.Keys != "" {
			out = append(out, b)
		}
	}
	return out
}
