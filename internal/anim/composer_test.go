package anim

import "testing"

type recordingPlayer struct {
	durations map[string]float64
	plays     []string
	clears    int
}

func (p *recordingPlayer) Play(clip string, loop bool) { p.plays = append(p.plays, clip) }
func (p *recordingPlayer) Clear()                      { p.clears++ }
func (p *recordingPlayer) Duration(clip string) float64 {
	return p.durations[clip]
}

func newRecordingPlayer() *recordingPlayer {
	return &recordingPlayer{durations: map[string]float64{
		"Relax":    2,
		"Move":     1,
		"Interact": 1.5,
	}}
}

var (
	relax    = Data{Clip: Clip{Name: "Relax", Stage: "Default", Type: TypeIdle}, Loop: true}
	move     = Data{Clip: Clip{Name: "Move", Stage: "Default", Type: TypeMove}, Loop: true, Mobility: 1}
	interact = Data{Clip: Clip{Name: "Interact", Stage: "Default", Type: TypeInteract}, Strict: true}
)

func TestOfferRejectsEmpty(t *testing.T) {
	c := NewComposer(newRecordingPlayer())
	if c.Offer(Data{}) {
		t.Fatal("expected empty data to be rejected")
	}
	if _, ok := c.Playing(); ok {
		t.Fatal("composer should stay idle")
	}
}

func TestOfferLooseReplaces(t *testing.T) {
	p := newRecordingPlayer()
	c := NewComposer(p)

	var applied []string
	c.OnApply = func(d Data) { applied = append(applied, d.Clip.Name) }

	if !c.Offer(relax) {
		t.Fatal("expected first offer to be accepted")
	}
	if !c.Offer(move) {
		t.Fatal("expected loose clip to be replaced")
	}
	got, ok := c.Playing()
	if !ok || !got.Equal(move) {
		t.Fatalf("Playing() = %v, %v; want %v", got, ok, move)
	}
	if len(p.plays) != 2 || p.plays[1] != "Move" {
		t.Fatalf("plays = %v", p.plays)
	}
	if len(applied) != 2 {
		t.Fatalf("OnApply calls = %v, want 2", applied)
	}
}

func TestOfferIdenticalIsNoop(t *testing.T) {
	p := newRecordingPlayer()
	c := NewComposer(p)
	c.Offer(relax)
	c.Update(1)

	if c.Offer(relax) {
		t.Fatal("identical request should not restart the clip")
	}
	if c.Elapsed() != 1 {
		t.Fatalf("Elapsed() = %v, want 1", c.Elapsed())
	}
	if len(p.plays) != 1 {
		t.Fatalf("plays = %v, want a single play", p.plays)
	}
}

func TestStrictRejectsOtherRequests(t *testing.T) {
	c := NewComposer(newRecordingPlayer())
	c.Offer(interact)

	for _, d := range []Data{relax, move, interact.Derive(4, 0)} {
		if c.Offer(d) {
			t.Fatalf("strict clip was overridden by %v", d)
		}
		got, _ := c.Playing()
		if !got.Equal(interact) {
			t.Fatalf("Playing() = %v, want %v", got, interact)
		}
	}
}

func TestResetAllowsAnyOffer(t *testing.T) {
	p := newRecordingPlayer()
	c := NewComposer(p)
	c.Offer(interact)
	c.Reset()

	if _, ok := c.Playing(); ok {
		t.Fatal("expected idle after Reset")
	}
	if !c.Offer(relax) {
		t.Fatal("expected offer after Reset to be accepted")
	}
	if p.clears != 3 {
		t.Fatalf("clears = %d, want 3", p.clears)
	}
}

func TestCompletionChainsNext(t *testing.T) {
	c := NewComposer(newRecordingPlayer())
	c.Offer(interact.Then(relax))

	for range 14 {
		if c.Update(0.1) {
			t.Fatal("completed before the clip duration elapsed")
		}
	}
	got, _ := c.Playing()
	if got.Clip.Name != "Interact" {
		t.Fatalf("Playing() = %v, want Interact", got)
	}

	if !c.Update(0.2) {
		t.Fatal("expected completion once the duration elapsed")
	}
	got, ok := c.Playing()
	if !ok || !got.Equal(relax) {
		t.Fatalf("Playing() = %v, %v; want %v", got, ok, relax)
	}
}

func TestCompletionWithoutNextGoesIdle(t *testing.T) {
	c := NewComposer(newRecordingPlayer())
	c.Offer(interact)
	c.Update(2)
	if _, ok := c.Playing(); ok {
		t.Fatal("expected idle after a one-shot clip")
	}
}

func TestLoopingClipNeverCompletes(t *testing.T) {
	c := NewComposer(newRecordingPlayer())
	c.Offer(relax)
	for range 100 {
		if c.Update(0.5) {
			t.Fatal("looping clip reported completion")
		}
	}
	if got, _ := c.Playing(); !got.Equal(relax) {
		t.Fatalf("Playing() = %v", got)
	}
}

func TestDataEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Data
		want bool
	}{
		{name: "same", a: relax, b: relax, want: true},
		{name: "different mobility", a: move, b: move.Derive(0, -1), want: false},
		{name: "same next by value", a: interact.Then(relax), b: interact.Then(relax), want: true},
		{name: "next vs none", a: interact.Then(relax), b: interact, want: false},
		{name: "different next", a: interact.Then(relax), b: interact.Then(move), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
