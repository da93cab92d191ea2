package pet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/behavior"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/platform"
	. "github.com/onsi/gomega"
)

const (
	frameDT = 1.0 / 30
	ownID   = platform.WindowID(1)
)

var fullHD = platform.Display{ID: 0, Name: "HDMI-1", Bounds: platform.Rect{Width: 1920, Height: 1080}}

type transparentCanvas struct{}

func (transparentCanvas) SolidAt(int, int) bool { return false }

type fixture struct {
	desk     *platform.Memory
	cfg      *config.Config
	manifest *anim.Manifest
	hit      HitTester
}

func newFixture() *fixture {
	cfg := config.DefaultConfig()
	cfg.Behavior.AIActivation = 0
	return &fixture{
		desk:     platform.NewMemory(platform.Window{ID: ownID, Title: "deskpet"}, fullHD),
		cfg:      cfg,
		manifest: anim.BuiltinManifest(),
	}
}

func (f *fixture) options(t *testing.T) Options {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 11))
	b, err := behavior.New(BehaviorConfig(f.cfg), f.manifest, rng)
	if err != nil {
		t.Fatalf("behavior.New() error: %v", err)
	}
	return Options{
		Config:   f.cfg,
		Accessor: f.desk,
		Behavior: b,
		Player:   f.manifest.Player(),
		Canvas: func(stage anim.Stage) (int, int, error) {
			return f.manifest.Canvas(stage, f.cfg.CanvasFittingSamples)
		},
		HitTester: f.hit,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:      rng,
	}
}

func (f *fixture) newPet(t *testing.T) *Pet {
	t.Helper()
	p, err := New(f.options(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func tickN(p *Pet, n int) {
	for range n {
		p.Tick(frameDT)
	}
}

// settle lets the pet fall until it rests on the floor.
func settle(t *testing.T, p *Pet) {
	t.Helper()
	for range 30 * 10 {
		p.Tick(frameDT)
		if p.plane.Grounded() {
			return
		}
	}
	t.Fatal("pet never landed")
}

// await runs fn on another goroutine and ticks the pet until it returns.
func await(t *testing.T, p *Pet, fn func() error) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- fn() }()
	deadline := time.After(time.Second)
	for {
		select {
		case err := <-errc:
			return err
		case <-deadline:
			t.Fatal("command was never handled")
		default:
			p.Tick(frameDT)
			time.Sleep(time.Millisecond)
		}
	}
}

func walkData(mobility int) anim.Data {
	return anim.Data{
		Clip:     anim.Clip{Name: "Move", Stage: "Default", Type: anim.TypeMove},
		Loop:     true,
		Mobility: mobility,
	}
}

func TestNewWithoutMonitors(t *testing.T) {
	f := newFixture()
	f.desk.SetDisplays()
	_, err := New(f.options(t))
	if !errors.Is(err, ErrNoMonitors) {
		t.Fatalf("New() error = %v, want ErrNoMonitors", err)
	}

	f.desk.FailListing(errors.New("display gone"))
	_, err = New(f.options(t))
	if !errors.Is(err, ErrNoMonitors) {
		t.Fatalf("New() error = %v, want ErrNoMonitors", err)
	}
}

func TestNewPlacesWindow(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)

	g.Expect(p.WindowRect()).To(Equal(platform.Rect{X: 284, Y: 216, Width: 200, Height: 200}))
	w, ok := f.desk.Window(ownID)
	g.Expect(ok).To(BeTrue())
	g.Expect(w.Bounds).To(Equal(p.WindowRect()))
	g.Expect(f.desk.Alpha(ownID)).To(BeZero())

	style, err := f.desk.ExtendedStyle(ownID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(style & platform.StyleLayered).NotTo(BeZero())
	g.Expect(style & platform.StyleTopmost).NotTo(BeZero())
	g.Expect(f.desk.LastStacking().Mode).To(Equal(platform.StackTop))
}

func TestScaleSizesWindow(t *testing.T) {
	f := newFixture()
	f.cfg.Display.Scale = 1.5
	p := f.newPet(t)
	if r := p.WindowRect(); r.Width != 300 || r.Height != 300 {
		t.Fatalf("window size = %dx%d, want 300x300", r.Width, r.Height)
	}
}

func TestFallLandsAndPlaysDropped(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)

	sawDropped := false
	for range 30 * 10 {
		p.Tick(frameDT)
		if p.Status().Animation == "Interact" {
			sawDropped = true
		}
	}
	g.Expect(sawDropped).To(BeTrue())
	g.Expect(p.plane.Grounded()).To(BeTrue())
	g.Expect(p.plane.Y() + p.plane.H()).To(Equal(1080.0))

	// The window has caught up with the plane and faded in.
	g.Expect(p.WindowRect().Y).To(Equal(880))
	g.Expect(f.desk.Alpha(ownID)).To(Equal(1.0))
	g.Expect(p.Status().Animation).To(Equal("Relax"))
}

func TestWalkTurnsAroundAtBorder(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)

	p.plane.ChangePosition(0, p.plane.BorderRight(), p.plane.Y())
	g.Expect(p.changeAnimation(walkData(1))).To(BeTrue())
	keep := walkData(1)
	p.keepAnim = &keep

	p.Tick(frameDT)
	playing, ok := p.composer.Playing()
	g.Expect(ok).To(BeTrue())
	g.Expect(playing.Mobility).To(Equal(-1))
	g.Expect(p.keepAnim.Mobility).To(Equal(-1))
	g.Expect(p.plane.X()).To(BeNumerically("<=", 1720))

	start := p.plane.X()
	tickN(p, 60)
	g.Expect(p.plane.X()).To(BeNumerically("<", start-20))
}

func TestWalkingOffLedgeFalls(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	f.desk.PushBottom(platform.Window{ID: 2, Title: "ledge", Bounds: platform.Rect{X: 0, Y: 500, Width: 900, Height: 580}})
	p := f.newPet(t)
	settle(t, p)
	g.Expect(p.plane.Y() + p.plane.H()).To(Equal(500.0))

	p.plane.ChangePosition(0, 780, p.plane.Y())
	keep := walkData(1)
	p.keepAnim = &keep

	sawDefault, sawDropped := false, false
	maxVY := 0.0
	for range 30 * 4 {
		p.Tick(frameDT)
		if _, vy := p.plane.Velocity(); vy > maxVY {
			maxVY = vy
		}
		switch anim := p.Status().Animation; {
		case p.plane.Dropping() && anim == "Relax":
			sawDefault = true
		case anim == "Interact":
			sawDropped = true
		}
	}

	g.Expect(sawDefault).To(BeTrue(), "the default clip plays while falling")
	g.Expect(sawDropped).To(BeTrue(), "the dropped clip plays on landing")
	// 580 px of free fall reaches about 900 px/s.
	g.Expect(maxVY).To(BeNumerically(">", 600))
	g.Expect(p.plane.Y() + p.plane.H()).To(Equal(1080.0))
	g.Expect(p.plane.X()).To(BeNumerically(">", 800))
}

func TestRandomRound(t *testing.T) {
	g := NewWithT(t)
	p := &Pet{rng: rand.New(rand.NewPCG(3, 4))}

	g.Expect(p.randomRound(2)).To(Equal(2))
	g.Expect(p.randomRound(-3)).To(Equal(-3))

	sum := 0
	for range 10000 {
		n := p.randomRound(0.25)
		g.Expect(n).To(BeElementOf(0, 1))
		sum += n
	}
	g.Expect(float64(sum) / 10000).To(BeNumerically("~", 0.25, 0.03))

	for range 100 {
		g.Expect(p.randomRound(-1.5)).To(BeElementOf(-1, -2))
	}
}

func TestToolwindowAppliedAfterRetries(t *testing.T) {
	f := newFixture()
	f.desk.DenyForeground(3)
	f.newPet(t)

	style, _ := f.desk.ExtendedStyle(ownID)
	if style&platform.StyleToolWindow == 0 {
		t.Fatalf("tool window style missing after retries, style=%b", style)
	}
}

func TestToolwindowPromiseKeptByLoop(t *testing.T) {
	f := newFixture()
	f.desk.DenyForeground(5000)
	p := f.newPet(t)

	style, _ := f.desk.ExtendedStyle(ownID)
	if style&platform.StyleToolWindow != 0 {
		t.Fatal("tool window style should not be applied while foreground is denied")
	}

	f.desk.DenyForeground(0)
	p.Tick(frameDT)
	style, _ = f.desk.ExtendedStyle(ownID)
	if style&platform.StyleToolWindow == 0 {
		t.Fatal("tool window style should be applied once the window reaches the foreground")
	}
}

func TestToolwindowDisabled(t *testing.T) {
	f := newFixture()
	f.cfg.Window.Toolwindow = false
	f.newPet(t)
	style, _ := f.desk.ExtendedStyle(ownID)
	if style&platform.StyleToolWindow != 0 {
		t.Fatal("tool window style applied although disabled")
	}
}

func TestClickPlaysInteract(t *testing.T) {
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)
	tickN(p, 60)

	p.MouseDown(100, 100, ButtonLeft)
	p.MouseUp(100, 100, ButtonLeft)
	playing, _ := p.composer.Playing()
	if playing.Clip.Name != "Interact" || playing.Loop {
		t.Fatalf("after a click playing = %v", playing)
	}
}

func TestClickOnTransparentPixelIsForwarded(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	f.hit = transparentCanvas{}
	f.desk.PushBottom(platform.Window{ID: 7, Title: "editor", Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}})
	p := f.newPet(t)

	rect := p.WindowRect()
	p.MouseDown(10, 20, ButtonLeft)
	p.MouseUp(10, 20, ButtonLeft)
	p.MouseMove(11, 20)

	g.Expect(f.desk.Forwarded()).To(Equal([]platform.ForwardedEvent{
		{Window: 7, Event: platform.LeftDown, X: rect.X + 10, Y: rect.Y + 20},
		{Window: 7, Event: platform.LeftUp, X: rect.X + 10, Y: rect.Y + 20},
		{Window: 7, Event: platform.MouseMove, X: rect.X + 11, Y: rect.Y + 20},
	}))
	playing, _ := p.composer.Playing()
	g.Expect(playing.Clip.Name).To(Equal("Relax"))
}

func TestDragMovesPetAndKeepsDirection(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)
	tickN(p, 30)
	g.Expect(p.changeAnimation(walkData(-1))).To(BeTrue())

	x0, y0 := p.plane.X(), p.plane.Y()
	p.MouseDown(100, 100, ButtonLeft)
	p.PostInput(InputEvent{Kind: InputDrag, X: 130, Y: 60})
	p.Tick(frameDT)

	g.Expect(p.plane.X()).To(Equal(x0 + 30))
	g.Expect(p.plane.Y()).To(Equal(y0 - 40))
	g.Expect(p.WindowRect().X).To(Equal(int(x0) + 30))
	status := p.Status()
	g.Expect(status.Dragging).To(BeTrue())
	g.Expect(status.Animation).To(Equal("Interact"))

	// Dragging swapped the clip, so put a walk back before letting go.
	p.composer.Reset()
	g.Expect(p.changeAnimation(walkData(-1))).To(BeTrue())
	p.MouseUp(130, 60, ButtonLeft)
	playing, _ := p.composer.Playing()
	g.Expect(playing.Mobility).To(Equal(1))
	g.Expect(p.mouse.dragging).To(BeFalse())
}

func TestVerticalDragKeepsWalkDirection(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)
	keep := walkData(-1)
	p.keepAnim = &keep

	p.MouseDown(100, 100, ButtonLeft)
	p.MouseDrag(100, 40)
	p.composer.Reset()
	g.Expect(p.changeAnimation(walkData(-1))).To(BeTrue())
	p.MouseUp(100, 40, ButtonLeft)

	playing, _ := p.composer.Playing()
	g.Expect(playing.Mobility).To(Equal(-1))
	g.Expect(p.keepAnim.Mobility).To(Equal(-1))
	g.Expect(p.mouse.dragging).To(BeFalse())
}

func TestRightDragIsIgnored(t *testing.T) {
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)

	x0 := p.plane.X()
	p.MouseDown(100, 100, ButtonRight)
	p.MouseDrag(150, 100)
	if p.plane.X() != x0 || p.mouse.dragging {
		t.Fatal("right-button drag should not move the pet")
	}
}

func TestRightClickOpensContextMenu(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	var calls [][2]int
	opts := f.options(t)
	opts.ContextMenu = func(x, y int) { calls = append(calls, [2]int{x, y}) }
	p, err := New(opts)
	g.Expect(err).NotTo(HaveOccurred())
	settle(t, p)
	tickN(p, 30)

	r := p.WindowRect()
	p.MouseDown(100, 120, ButtonRight)
	g.Expect(calls).To(Equal([][2]int{{r.X + 100, r.Y + 120}}))

	// Left clicks never open the menu.
	p.MouseDown(100, 120, ButtonLeft)
	g.Expect(calls).To(HaveLen(1))
}

func TestKeepAnimCommand(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)
	settle(t, p)
	tickN(p, 60)
	g.Expect(p.changeAnimation(anim.Data{Clip: anim.Clip{Name: "Sleep", Stage: "Default", Type: anim.TypeSleep}, Loop: true})).To(BeTrue())

	g.Expect(await(t, p, func() error { return p.SetKeepAnim(true) })).To(Succeed())
	g.Expect(p.Status().KeepAnim).To(BeTrue())

	// A click does not override the pinned clip for longer than a frame.
	p.MouseDown(100, 100, ButtonLeft)
	p.MouseUp(100, 100, ButtonLeft)
	p.Tick(frameDT)
	g.Expect(p.Status().Animation).To(Equal("Sleep"))

	g.Expect(await(t, p, func() error { return p.SetKeepAnim(false) })).To(Succeed())
	g.Expect(p.Status().KeepAnim).To(BeFalse())
}

func TestTransparentCommand(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)

	g.Expect(await(t, p, func() error { return p.SetTransparent(true) })).To(Succeed())
	g.Expect(f.desk.ClickThrough(ownID)).To(BeTrue())
	g.Expect(p.Status().Transparent).To(BeTrue())

	// Rescans keep the flag in place.
	tickN(p, 10)
	g.Expect(f.desk.ClickThrough(ownID)).To(BeTrue())
}

func TestChangeStage(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	f.manifest = &anim.Manifest{
		Clips: []anim.ClipSpec{
			{Name: "Relax", Stage: "Base", Type: anim.TypeIdle, Duration: 2},
			{Name: "Relax_B", Stage: "Battle", Type: anim.TypeIdle, Duration: 2},
		},
		Canvases: []anim.CanvasSpec{
			{Stage: "Base", Width: 200, Height: 200},
			{Stage: "Battle", Width: 320, Height: 240},
		},
	}
	p := f.newPet(t)

	g.Expect(await(t, p, func() error { return p.ChangeStage("") })).To(Succeed())
	s := p.Status()
	g.Expect(s.Stage).To(Equal(anim.Stage("Battle")))
	g.Expect(s.Animation).To(Equal("Relax_B"))
	g.Expect(s.Rect.Width).To(Equal(320))
	g.Expect(s.Rect.Height).To(Equal(240))

	g.Expect(await(t, p, func() error { return p.ChangeStage("Winter") })).NotTo(Succeed())
	g.Expect(await(t, p, func() error { return p.ChangeStage("Base") })).To(Succeed())
	g.Expect(p.Status().Stage).To(Equal(anim.Stage("Base")))
}

func TestChangeStageSingleStage(t *testing.T) {
	f := newFixture()
	p := f.newPet(t)
	err := await(t, p, func() error { return p.ChangeStage("") })
	if !errors.Is(err, ErrSingleStage) {
		t.Fatalf("ChangeStage() error = %v, want ErrSingleStage", err)
	}
}

func TestApplyConfigKeepsValidFields(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)

	next := f.cfg.Clone()
	next.Display.FPS = 0
	next.Display.Scale = 2
	next.Physics.GravityAcc = 400
	g.Expect(await(t, p, func() error { return p.ApplyConfig(next) })).To(Succeed())

	s := p.Status()
	g.Expect(s.FPS).To(Equal(30))
	g.Expect(s.Rect.Width).To(Equal(400))
	g.Expect(p.cfg.Physics.GravityAcc).To(Equal(400.0))
}

func TestApplyConfigRescalesScanInterval(t *testing.T) {
	g := NewWithT(t)
	f := newFixture()
	p := f.newPet(t)
	g.Expect(p.dir.Interval()).To(BeNumerically("~", 4.0/30, 1e-9))

	next := f.cfg.Clone()
	next.Display.FPS = 60
	g.Expect(await(t, p, func() error { return p.ApplyConfig(next) })).To(Succeed())

	g.Expect(p.dir.Interval()).To(BeNumerically("~", 4.0/60, 1e-9))
}

func TestRunStopsOnQuitAndCancel(t *testing.T) {
	f := newFixture()
	p := f.newPet(t)

	errc := make(chan error, 1)
	go func() { errc <- p.Run(context.Background()) }()
	if err := p.SetTransparent(true); err != nil {
		t.Fatalf("SetTransparent() error: %v", err)
	}
	p.Quit()
	p.Quit()
	if err := <-errc; err != nil {
		t.Fatalf("Run() after Quit = %v, want nil", err)
	}
	if err := p.SetKeepAnim(true); !errors.Is(err, ErrStopped) {
		t.Fatalf("command after quit = %v, want ErrStopped", err)
	}

	p2 := f.newPet(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { errc <- p2.Run(ctx) }()
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() after cancel = %v, want context.Canceled", err)
	}
}
