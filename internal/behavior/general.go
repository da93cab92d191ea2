// Package behavior decides what the pet does on its own and how it reacts
// to being clicked, dragged and dropped.
package behavior

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/1broseidon/deskpet/internal/anim"
)

// DecisionInterval is how often, in seconds, the AI considers a new action.
const DecisionInterval = 0.5

// Config switches the autonomous actions.
type Config struct {
	// AIActivation scales how often the pet acts on its own, 0 disables it.
	AIActivation  int
	AllowWalk     bool
	AllowSit      bool
	AllowInteract bool
}

// ErrNoClips is returned when a manifest has nothing to play.
var ErrNoClips = errors.New("no clips available")

type clipInfo struct {
	clip    anim.Clip
	offsetY int
}

type stageClips map[anim.ClipType]clipInfo

// action is one weighted autonomous choice.
type action struct {
	weight float64
	build  func(s stageClips) (anim.Data, bool)
}

// General is the default behaviour: idle, walk, sit and sleep on its own,
// react to clicks and landings.
type General struct {
	cfg    Config
	rng    *rand.Rand
	stages []anim.Stage
	clips  map[anim.Stage]stageClips
	stage  int
	accum  float64
}

// New builds a behaviour from a manifest. Within a stage the first clip of
// each type is used. rng may be nil.
func New(cfg Config, m *anim.Manifest, rng *rand.Rand) (*General, error) {
	if m == nil || len(m.Clips) == 0 {
		return nil, ErrNoClips
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := &General{
		cfg:    cfg,
		rng:    rng,
		stages: m.Stages(),
		clips:  map[anim.Stage]stageClips{},
	}
	for _, c := range m.Clips {
		sc := g.clips[c.Stage]
		if sc == nil {
			sc = stageClips{}
			g.clips[c.Stage] = sc
		}
		if _, ok := sc[c.Type]; ok {
			continue
		}
		sc[c.Type] = clipInfo{
			clip:    anim.Clip{Name: c.Name, Stage: c.Stage, Type: c.Type},
			offsetY: c.OffsetY,
		}
	}
	return g, nil
}

// SetConfig replaces the action switches.
func (g *General) SetConfig(cfg Config) {
	g.cfg = cfg
}

func (g *General) current() stageClips {
	return g.clips[g.stages[g.stage]]
}

var idleOrder = []anim.ClipType{
	anim.TypeIdle, anim.TypeSit, anim.TypeSleep, anim.TypeMove, anim.TypeInteract, anim.TypeSpecial,
}

// idle returns the resting clip of the stage, falling back to any clip.
func (s stageClips) idle() clipInfo {
	for _, t := range idleOrder {
		if c, ok := s[t]; ok {
			return c
		}
	}
	return clipInfo{}
}

func loop(c clipInfo, mobility int) anim.Data {
	return anim.Data{Clip: c.clip, Loop: true, OffsetY: c.offsetY, Mobility: mobility}
}

// once plays c a single time and then returns to idle.
func (s stageClips) once(t anim.ClipType) (anim.Data, bool) {
	c, ok := s[t]
	if !ok {
		return anim.Data{}, false
	}
	d := anim.Data{Clip: c.clip, OffsetY: c.offsetY}
	return d.Then(loop(s.idle(), 0)), true
}

func (s stageClips) looped(t anim.ClipType, mobility int) (anim.Data, bool) {
	c, ok := s[t]
	if !ok {
		return anim.Data{}, false
	}
	return loop(c, mobility), true
}

func (g *General) actions() []action {
	acts := []action{{
		weight: 1.0,
		build:  func(s stageClips) (anim.Data, bool) { return loop(s.idle(), 0), true },
	}}
	if g.cfg.AllowWalk {
		acts = append(acts,
			action{weight: 0.75, build: func(s stageClips) (anim.Data, bool) { return s.looped(anim.TypeMove, -1) }},
			action{weight: 0.75, build: func(s stageClips) (anim.Data, bool) { return s.looped(anim.TypeMove, 1) }},
		)
	}
	if g.cfg.AllowSit {
		acts = append(acts,
			action{weight: 0.5, build: func(s stageClips) (anim.Data, bool) { return s.looped(anim.TypeSit, 0) }},
			action{weight: 0.25, build: func(s stageClips) (anim.Data, bool) { return s.looped(anim.TypeSleep, 0) }},
		)
	}
	if g.cfg.AllowInteract {
		acts = append(acts,
			action{weight: 0.1, build: func(s stageClips) (anim.Data, bool) { return s.once(anim.TypeSpecial) }},
		)
	}
	return acts
}

// activationChance is the probability that a decision point picks an action.
func (g *General) activationChance() float64 {
	return float64(g.cfg.AIActivation) / 20
}

// AutoCtrl returns the animation the AI wants this frame. Between decision
// points, and when the AI chose nothing, it returns an empty Data.
func (g *General) AutoCtrl(dt float64) anim.Data {
	g.accum += dt
	if g.accum < DecisionInterval {
		return anim.Data{}
	}
	g.accum = 0
	if g.cfg.AIActivation <= 0 || g.rng.Float64() >= g.activationChance() {
		return anim.Data{}
	}

	s := g.current()
	var avail []action
	total := 0.0
	for _, a := range g.actions() {
		if _, ok := a.build(s); ok {
			avail = append(avail, a)
			total += a.weight
		}
	}
	r := g.rng.Float64() * total
	for _, a := range avail {
		r -= a.weight
		if r < 0 {
			d, _ := a.build(s)
			return d
		}
	}
	return anim.Data{}
}

// DefaultAnim is the resting loop of the current stage.
func (g *General) DefaultAnim() anim.Data {
	return loop(g.current().idle(), 0)
}

// Dragging is shown while the pet is held.
func (g *General) Dragging() anim.Data {
	if d, ok := g.current().looped(anim.TypeInteract, 0); ok {
		return d
	}
	return g.DefaultAnim()
}

// Dropped plays once right after landing.
func (g *General) Dropped() anim.Data {
	if d, ok := g.current().once(anim.TypeInteract); ok {
		return d
	}
	return g.DefaultAnim()
}

// ClickStart reacts to a press on the pet. The reaction plays on release, so
// a press alone changes nothing.
func (g *General) ClickStart() anim.Data {
	return anim.Data{}
}

// ClickEnd reacts to a click released on the pet.
func (g *General) ClickEnd() anim.Data {
	if !g.cfg.AllowInteract {
		return anim.Data{}
	}
	d, _ := g.current().once(anim.TypeInteract)
	return d
}

// Stages lists every stage in manifest order.
func (g *General) Stages() []anim.Stage {
	return append([]anim.Stage(nil), g.stages...)
}

// CurrentStage returns the active stage.
func (g *General) CurrentStage() anim.Stage {
	return g.stages[g.stage]
}

// NextStage cycles to the following stage.
func (g *General) NextStage() {
	g.stage = (g.stage + 1) % len(g.stages)
}

// SetStage switches to a stage by name.
func (g *General) SetStage(s anim.Stage) error {
	for i, st := range g.stages {
		if st == s {
			g.stage = i
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", s)
}
