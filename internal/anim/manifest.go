package anim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ClipSpec describes one clip in a manifest file.
type ClipSpec struct {
	Name     string   `yaml:"name"`
	Stage    Stage    `yaml:"stage"`
	Type     ClipType `yaml:"type"`
	Duration float64  `yaml:"duration"`
	// OffsetY shifts the drawing down while the clip plays, in unscaled pixels.
	OffsetY int `yaml:"offset_y,omitempty"`
	// Extents are evenly spaced [width, height] keyframes of the drawn
	// bounding box over the clip. They are only used when the stage has no
	// explicit canvas.
	Extents [][2]float64 `yaml:"extents,omitempty"`
}

// CanvasSpec pins the canvas size of a stage.
type CanvasSpec struct {
	Stage  Stage `yaml:"stage"`
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
}

// Manifest lists the clips a character provides. It stands in for the
// skeleton asset when running without a renderer.
type Manifest struct {
	Clips    []ClipSpec   `yaml:"clips"`
	Canvases []CanvasSpec `yaml:"canvases,omitempty"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes a manifest, rejecting unknown keys.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that clip names are unique and durations are usable.
func (m *Manifest) Validate() error {
	if len(m.Clips) == 0 {
		return errors.New("manifest has no clips")
	}
	seen := make(map[string]struct{}, len(m.Clips))
	for i, c := range m.Clips {
		if c.Name == "" {
			return fmt.Errorf("clips[%d]: name is required", i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("clips[%d]: duplicate clip %q", i, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Duration <= 0 {
			return fmt.Errorf("clips[%d] %q: duration must be > 0", i, c.Name)
		}
		for j, e := range c.Extents {
			if e[0] < 0 || e[1] < 0 {
				return fmt.Errorf("clips[%d] %q: extents[%d] must not be negative", i, c.Name, j)
			}
		}
	}
	for i, cv := range m.Canvases {
		if cv.Width <= 0 || cv.Height <= 0 {
			return fmt.Errorf("canvases[%d] %q: width and height must be > 0", i, cv.Stage)
		}
	}
	return nil
}

// AllClips returns every clip as composer-ready values.
func (m *Manifest) AllClips() []Clip {
	out := make([]Clip, 0, len(m.Clips))
	for _, c := range m.Clips {
		out = append(out, Clip{Name: c.Name, Stage: c.Stage, Type: c.Type})
	}
	return out
}

// Stages returns the distinct stages in first-seen order.
func (m *Manifest) Stages() []Stage {
	var out []Stage
	seen := map[Stage]struct{}{}
	for _, c := range m.Clips {
		if _, ok := seen[c.Stage]; ok {
			continue
		}
		seen[c.Stage] = struct{}{}
		out = append(out, c.Stage)
	}
	return out
}

// Canvas returns the canvas size of a stage. An explicit canvas wins;
// otherwise the extents of the stage's clips are sampled at `samples` evenly
// spaced points and the largest box is used.
func (m *Manifest) Canvas(stage Stage, samples int) (width, height int, err error) {
	for _, cv := range m.Canvases {
		if cv.Stage == stage {
			return cv.Width, cv.Height, nil
		}
	}
	if samples < 1 {
		samples = 1
	}

	var maxW, maxH float64
	found := false
	for _, c := range m.Clips {
		if c.Stage != stage || len(c.Extents) == 0 {
			continue
		}
		found = true
		for i := range samples {
			t := 0.0
			if samples > 1 {
				t = float64(i) / float64(samples-1)
			}
			w, h := sampleExtent(c.Extents, t)
			maxW = math.Max(maxW, w)
			maxH = math.Max(maxH, h)
		}
	}
	if !found || maxW <= 0 || maxH <= 0 {
		return 0, 0, fmt.Errorf("no canvas for stage %q", stage)
	}
	return int(math.Ceil(maxW)), int(math.Ceil(maxH)), nil
}

// sampleExtent interpolates the keyframes at t in [0, 1].
func sampleExtent(keys [][2]float64, t float64) (float64, float64) {
	if len(keys) == 1 {
		return keys[0][0], keys[0][1]
	}
	pos := t * float64(len(keys)-1)
	i := int(pos)
	if i >= len(keys)-1 {
		last := keys[len(keys)-1]
		return last[0], last[1]
	}
	f := pos - float64(i)
	a, b := keys[i], keys[i+1]
	return a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f
}

// Player returns a headless player over the manifest's clips.
func (m *Manifest) Player() *ManifestPlayer {
	d := make(map[string]float64, len(m.Clips))
	for _, c := range m.Clips {
		d[c.Name] = c.Duration
	}
	return &ManifestPlayer{durations: d}
}

// ManifestPlayer records what would be drawn. It has no pixels, so every
// point inside the canvas counts as solid.
type ManifestPlayer struct {
	durations map[string]float64
	current   string
	loop      bool
}

func (p *ManifestPlayer) Play(clip string, loop bool) {
	p.current, p.loop = clip, loop
}

func (p *ManifestPlayer) Clear() {
	p.current, p.loop = "", false
}

// Duration returns +Inf for unknown clips so they never complete.
func (p *ManifestPlayer) Duration(clip string) float64 {
	if d, ok := p.durations[clip]; ok {
		return d
	}
	return math.Inf(1)
}

// Current returns the clip being played, if any.
func (p *ManifestPlayer) Current() (string, bool) {
	return p.current, p.current != ""
}

// SolidAt reports whether a point of the canvas is drawn on. Without pixel
// data anything is solid while a clip plays.
func (p *ManifestPlayer) SolidAt(x, y int) bool {
	return p.current != ""
}
