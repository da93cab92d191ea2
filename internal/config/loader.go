package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for defaults
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind == SourceFile && s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	if s.Name != "" {
		return string(s.Kind) + " (" + s.Name + ")"
	}
	return string(s.Kind)
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last file that set it
	Files   []string          // loaded files, in load order
}

// Validate validates the loaded config and points errors at the file
// position that set the offending value.
func (r *LoadResult) Validate() error {
	if err := r.Config.Validate(); err != nil {
		return attachSourceContext(err, r.Sources)
	}
	return nil
}

// Load reads the configuration from the standard location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path and everything it includes. A missing file yields
// the defaults. The returned config is not validated; call Validate for the
// strict check or Config.Sanitize to fall back per field.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Sources: map[string]Source{}}
	raw := RawConfig{}

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		l := &loader{seen: map[string]bool{}}
		merged, err := l.load(path, nil)
		if err != nil {
			return nil, err
		}
		raw = merged
		res.Sources = l.sources
		res.Files = l.files
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, res.Sources)
	}
	if m := cfg.Character.Manifest; m != "" && !filepath.IsAbs(m) {
		if src, ok := res.Sources["character.manifest"]; ok && src.File != "" {
			cfg.Character.Manifest = filepath.Join(filepath.Dir(src.File), m)
		}
	}
	res.Config = cfg
	return res, nil
}

// loader merges a file with its includes. Included files are applied first
// so that the including file wins.
type loader struct {
	seen    map[string]bool
	sources map[string]Source
	files   []string
}

func (l *loader) load(path string, stack []string) (RawConfig, error) {
	if l.sources == nil {
		l.sources = map[string]Source{}
	}
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	for _, parent := range stack {
		if parent == canon {
			return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
		}
	}
	if l.seen[canon] {
		return RawConfig{}, nil
	}
	l.seen[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", canon, err)
	}

	root := documentRoot(&doc)
	merged := RawConfig{}
	for _, ref := range includeRefs(root, canon) {
		paths, err := expandInclude(canon, ref.value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", ref.src, ref.value, err)
		}
		for _, p := range paths {
			inc, err := l.load(p, append(stack, canon))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	merged = merged.merge(raw)
	recordSources(root, canon, "", l.sources)
	l.files = append(l.files, canon)
	return merged, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

func nodeSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// recordSources stores the position of every mapping value under its dotted
// path. Sequences are recorded as a whole.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out[path] = nodeSource(file, val)
		recordSources(val, file, path, out)
	}
}

type includeRef struct {
	value string
	src   Source
}

func includeRefs(root *yaml.Node, file string) []includeRef {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				refs = append(refs, includeRef{value: item.Value, src: nodeSource(file, item)})
			}
		}
		return refs
	}
	return nil
}

// expandInclude resolves an include relative to the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func expandInclude(baseFile, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(baseFile), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
