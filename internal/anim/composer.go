package anim

// Player is the renderer side of the composer: it plays one clip at a time.
type Player interface {
	Play(clip string, loop bool)
	Clear()
	// Duration returns the natural length of a clip in seconds.
	Duration(clip string) float64
}

// Composer tracks the one animation currently playing. It is either idle or
// playing exactly one Data.
//
// Completion is polled: the owner calls Update every frame and the composer
// compares elapsed time against the clip duration reported by the Player.
type Composer struct {
	player  Player
	playing Data
	active  bool
	elapsed float64

	// OnApply, when set, runs after a request has been accepted.
	OnApply func(Data)
}

// NewComposer returns an idle composer bound to p.
func NewComposer(p Player) *Composer {
	return &Composer{player: p}
}

// Offer requests d. It is rejected (returning false) when d is empty, when
// the playing animation is strict, or when d equals what is already playing.
// Otherwise the previous clip is cancelled and d starts from the beginning.
func (c *Composer) Offer(d Data) bool {
	if d.IsEmpty() {
		return false
	}
	if c.active && (c.playing.Strict || c.playing.Equal(d)) {
		return false
	}

	c.playing = d
	c.active = true
	c.elapsed = 0
	c.player.Clear()
	c.player.Play(d.Clip.Name, d.Loop)
	if c.OnApply != nil {
		c.OnApply(d)
	}
	return true
}

// Reset cancels playback unconditionally.
func (c *Composer) Reset() {
	c.playing = Data{}
	c.active = false
	c.elapsed = 0
	c.player.Clear()
}

// Playing returns the current request, or false while idle.
func (c *Composer) Playing() (Data, bool) {
	return c.playing, c.active
}

// Elapsed returns how long the current clip has been playing.
func (c *Composer) Elapsed() float64 {
	return c.elapsed
}

// Update advances the playback clock. When a non-looping clip has run for its
// full duration the composer goes idle and, if a follow-up was requested,
// offers it. It reports whether a completion happened.
func (c *Composer) Update(dt float64) bool {
	if !c.active {
		return false
	}
	c.elapsed += dt
	if c.playing.Loop {
		return false
	}
	if c.elapsed < c.player.Duration(c.playing.Clip.Name) {
		return false
	}

	done := c.playing
	c.Reset()
	if done.Next != nil && !done.Next.IsEmpty() {
		c.Offer(*done.Next)
	}
	return true
}

func (c *Composer) String() string {
	if !c.active {
		return "Composer{idle}"
	}
	return "Composer{" + c.playing.String() + "}"
}
