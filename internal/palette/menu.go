package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/deskpet/internal/pet"
)

// Menu actions. Stage switches are stagePrefix followed by the stage name.
const (
	ActionKeepAnim    = "keep_anim"
	ActionTransparent = "transparent"
	ActionReload      = "reload"
	ActionQuit        = "quit"
	stagePrefix       = "stage:"
)

// Target is what the menu acts on.
type Target interface {
	Status() pet.Status
	SetKeepAnim(on bool) error
	SetTransparent(on bool) error
	ChangeStage(stage string) error
	Quit()
}

// PetMenu builds the rows for a pet in state st.
func PetMenu(st pet.Status) []Item {
	items := []Item{
		{Label: fmt.Sprintf("Pet %d: %s", st.Ordinal, st.Animation), IsHeader: true},
		{Label: "Keep animation", Action: ActionKeepAnim, Icon: "media-playback-pause", IsActive: st.KeepAnim},
		{Label: "Click-through", Action: ActionTransparent, Icon: "view-hidden", IsActive: st.Transparent},
	}
	if len(st.Stages) > 1 {
		items = append(items, Item{Label: "Stages", IsHeader: true})
		for _, s := range st.Stages {
			items = append(items, Item{
				Label:    string(s),
				Action:   stagePrefix + string(s),
				Icon:     "folder",
				IsActive: s == st.Stage,
			})
		}
	}
	return append(items,
		Item{Label: "Reload config", Action: ActionReload, Icon: "view-refresh"},
		Item{Label: "Quit", Action: ActionQuit, Icon: "application-exit"},
	)
}

// Dispatch runs action against t. reload may be nil.
func Dispatch(action string, t Target, reload func() error) error {
	switch {
	case action == ActionKeepAnim:
		return t.SetKeepAnim(!t.Status().KeepAnim)
	case action == ActionTransparent:
		return t.SetTransparent(!t.Status().Transparent)
	case action == ActionReload:
		if reload == nil {
			return fmt.Errorf("reload is not available")
		}
		return reload()
	case action == ActionQuit:
		t.Quit()
		return nil
	case strings.HasPrefix(action, stagePrefix):
		return t.ChangeStage(strings.TrimPrefix(action, stagePrefix))
	}
	return fmt.Errorf("unknown menu action %q", action)
}

// Open shows the menu for t and runs the chosen action. Cancelling is not an
// error.
func Open(ctx context.Context, b Backend, t Target, reload func() error) error {
	it, err := b.Show(ctx, "deskpet", PetMenu(t.Status()))
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return Dispatch(it.Action, t, reload)
}
