package peers

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/deskpet/internal/physics"
	"github.com/1broseidon/deskpet/internal/platform"
)

// OrdinalSource resolves which windows belong to pets. *Registry implements it.
type OrdinalSource interface {
	Ordinals() (map[platform.WindowID]int, error)
}

// DirectoryConfig holds configuration for the directory.
type DirectoryConfig struct {
	// Interval is the minimum time in seconds between two scans.
	Interval   float64
	OwnOrdinal int
	Options    Options
	Logger     *slog.Logger
}

// Directory runs throttled scans of the desktop and feeds them into a plane.
type Directory struct {
	acc        platform.Accessor
	ordinals   OrdinalSource
	ownOrdinal int
	opts       Options
	logger     *slog.Logger

	gate gate
	last Snapshot
}

var errNoDisplays = errors.New("no displays found")

// NewDirectory creates a directory. ordinals may be nil when the pet runs
// alone; every window is then treated as a non-pet window.
func NewDirectory(cfg DirectoryConfig, acc platform.Accessor, ordinals OrdinalSource) *Directory {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		acc:        acc,
		ordinals:   ordinals,
		ownOrdinal: cfg.OwnOrdinal,
		opts:       cfg.Options,
		logger:     logger,
		gate:       newGate(cfg.Interval),
	}
}

// Refresh scans the desktop when the throttle interval has elapsed and
// applies the result to p. obj is the pet's current on-screen rect. It
// returns the current stacking target and whether a scan ran. When listing
// fails the previous snapshot stays in effect.
func (d *Directory) Refresh(dt float64, obj platform.Rect, p *physics.Plane) (StackTarget, bool) {
	if !d.gate.ready(dt) {
		return d.last.Target, false
	}

	s, err := d.scan(obj)
	if err != nil {
		d.logger.Warn("peer scan failed, keeping previous snapshot", "error", err)
		return d.last.Target, false
	}

	Apply(s, p)
	d.last = s
	return s.Target, true
}

// Snapshot returns the result of the last successful scan.
func (d *Directory) Snapshot() Snapshot {
	return d.last
}

// SetOptions changes the scan switches from the next scan on.
func (d *Directory) SetOptions(opts Options) {
	d.opts = opts
}

// SetInterval changes the minimum time between two scans. Time already
// accumulated towards the next scan is kept.
func (d *Directory) SetInterval(seconds float64) {
	d.gate.interval = seconds
}

// Interval returns the minimum time in seconds between two scans.
func (d *Directory) Interval() float64 {
	return d.gate.interval
}

func (d *Directory) scan(obj platform.Rect) (Snapshot, error) {
	displays, err := d.acc.Displays()
	if err != nil {
		return Snapshot{}, err
	}
	if len(displays) == 0 {
		return Snapshot{}, errNoDisplays
	}
	windows, err := d.acc.ListWindows()
	if err != nil {
		return Snapshot{}, err
	}

	var ordinals map[platform.WindowID]int
	if d.ordinals != nil {
		ordinals, err = d.ordinals.Ordinals()
		if err != nil {
			return Snapshot{}, err
		}
	}

	return Scan(ScanInput{
		Windows:    windows,
		Displays:   displays,
		Own:        d.acc.OwnWindow(),
		OwnOrdinal: d.ownOrdinal,
		Ordinals:   ordinals,
		Object:     obj,
		Options:    d.opts,
	}), nil
}

// gate is an accumulated-time throttle. It starts full so that the first
// call always passes, and empties every time it fires.
type gate struct {
	interval float64
	accum    float64
}

func newGate(interval float64) gate {
	return gate{interval: interval, accum: interval}
}

func (g *gate) ready(dt float64) bool {
	g.accum += dt
	if g.accum >= g.interval {
		g.accum = 0
		return true
	}
	return false
}
