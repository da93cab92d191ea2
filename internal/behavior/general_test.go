package behavior

import (
	"math/rand/v2"
	"testing"

	"github.com/1broseidon/deskpet/internal/anim"
)

func allOn() Config {
	return Config{AIActivation: 9, AllowWalk: true, AllowSit: true, AllowInteract: true}
}

func newGeneral(t *testing.T, cfg Config, m *anim.Manifest) *General {
	t.Helper()
	if m == nil {
		m = anim.BuiltinManifest()
	}
	g, err := New(cfg, m, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

func TestNewRejectsEmptyManifest(t *testing.T) {
	if _, err := New(allOn(), &anim.Manifest{}, nil); err != ErrNoClips {
		t.Fatalf("New() error = %v, want ErrNoClips", err)
	}
}

func TestDefaultAnimIsIdleLoop(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	d := g.DefaultAnim()
	if d.Clip.Name != "Relax" || !d.Loop || d.Mobility != 0 {
		t.Fatalf("DefaultAnim() = %v", d)
	}
}

func TestAutoCtrlWaitsForDecisionPoint(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	for i := 0; i < 10; i++ {
		if d := g.AutoCtrl(DecisionInterval / 20); !d.IsEmpty() {
			t.Fatalf("AutoCtrl before the decision point returned %v", d)
		}
	}
}

func TestAutoCtrlDisabled(t *testing.T) {
	cfg := allOn()
	cfg.AIActivation = 0
	g := newGeneral(t, cfg, nil)
	for i := 0; i < 200; i++ {
		if d := g.AutoCtrl(DecisionInterval); !d.IsEmpty() {
			t.Fatalf("AutoCtrl with AI off returned %v", d)
		}
	}
}

func collect(g *General, n int) map[string]int {
	seen := map[string]int{}
	for i := 0; i < n; i++ {
		d := g.AutoCtrl(DecisionInterval)
		if d.IsEmpty() {
			seen[""]++
			continue
		}
		key := d.Clip.Name
		switch {
		case d.Mobility < 0:
			key += "<"
		case d.Mobility > 0:
			key += ">"
		}
		seen[key]++
	}
	return seen
}

func TestAutoCtrlPicksEveryAllowedAction(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	seen := collect(g, 4000)
	for _, want := range []string{"", "Relax", "Move<", "Move>", "Sit", "Sleep", "Special"} {
		if seen[want] == 0 {
			t.Fatalf("action %q never chosen in %v", want, seen)
		}
	}
}

func TestAutoCtrlHonoursSwitches(t *testing.T) {
	g := newGeneral(t, Config{AIActivation: 9}, nil)
	seen := collect(g, 2000)
	for key := range seen {
		if key != "" && key != "Relax" {
			t.Fatalf("unexpected action %q with every switch off: %v", key, seen)
		}
	}
}

func TestSitCarriesOffset(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	for i := 0; i < 4000; i++ {
		d := g.AutoCtrl(DecisionInterval)
		if d.Clip.Type == anim.TypeSit {
			if d.OffsetY != 12 {
				t.Fatalf("sit OffsetY = %d, want 12", d.OffsetY)
			}
			return
		}
	}
	t.Fatal("sit never chosen")
}

func TestClickEndPlaysInteractOnce(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	if d := g.ClickStart(); !d.IsEmpty() {
		t.Fatalf("ClickStart() = %v, want empty", d)
	}
	d := g.ClickEnd()
	if d.Clip.Name != "Interact" || d.Loop {
		t.Fatalf("ClickEnd() = %v", d)
	}
	if d.Next == nil || !d.Next.Equal(g.DefaultAnim()) {
		t.Fatalf("ClickEnd() should chain into the idle loop, got %v", d.Next)
	}

	g.SetConfig(Config{})
	if d := g.ClickEnd(); !d.IsEmpty() {
		t.Fatalf("ClickEnd() with interaction off = %v", d)
	}
}

func TestDraggedAndDropped(t *testing.T) {
	g := newGeneral(t, allOn(), nil)
	if d := g.Dragging(); d.Clip.Name != "Interact" || !d.Loop {
		t.Fatalf("Dragging() = %v", d)
	}
	if d := g.Dropped(); d.Clip.Name != "Interact" || d.Loop || d.Next == nil {
		t.Fatalf("Dropped() = %v", d)
	}

	idleOnly := &anim.Manifest{Clips: []anim.ClipSpec{{Name: "Idle", Stage: "A", Type: anim.TypeIdle, Duration: 1}}}
	g = newGeneral(t, allOn(), idleOnly)
	if !g.Dragging().Equal(g.DefaultAnim()) || !g.Dropped().Equal(g.DefaultAnim()) {
		t.Fatalf("without an interact clip the idle loop should be used")
	}
}

func TestStages(t *testing.T) {
	m := &anim.Manifest{Clips: []anim.ClipSpec{
		{Name: "Relax", Stage: "Base", Type: anim.TypeIdle, Duration: 1},
		{Name: "Relax_B", Stage: "Battle", Type: anim.TypeIdle, Duration: 1},
		{Name: "Attack", Stage: "Battle", Type: anim.TypeSpecial, Duration: 1},
	}}
	g := newGeneral(t, allOn(), m)

	if got := g.Stages(); len(got) != 2 || got[0] != "Base" || got[1] != "Battle" {
		t.Fatalf("Stages() = %v", got)
	}
	if g.CurrentStage() != "Base" {
		t.Fatalf("CurrentStage() = %q", g.CurrentStage())
	}

	g.NextStage()
	if g.CurrentStage() != "Battle" || g.DefaultAnim().Clip.Name != "Relax_B" {
		t.Fatalf("after NextStage: stage=%q default=%v", g.CurrentStage(), g.DefaultAnim())
	}
	g.NextStage()
	if g.CurrentStage() != "Base" {
		t.Fatalf("NextStage should wrap around, got %q", g.CurrentStage())
	}

	if err := g.SetStage("Battle"); err != nil {
		t.Fatalf("SetStage() error: %v", err)
	}
	if err := g.SetStage("Winter"); err == nil {
		t.Fatal("SetStage(unknown) should fail")
	}
	if g.CurrentStage() != "Battle" {
		t.Fatalf("failed SetStage must not change the stage")
	}
}
