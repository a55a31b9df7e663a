// Package preset loads named filter selections from a YAML file.
//
//	presets:
//	  - name: diabetic-foot
//	    llc: ["3. Skin Ulcer, Foot", "2. Osteomyelitis, Foot"]
//	    pad: ["PAD"]
//	    diabetes: ["Diabetes"]
package preset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

// ErrUnknownPreset is returned by Lookup for a name not present in the file.
var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Name     string   `yaml:"name"`
	LLC      []string `yaml:"llc"`
	PAD      []string `yaml:"pad"`
	Diabetes []string `yaml:"diabetes"`
}

// Selection converts the preset's labels. Unknown labels are an error.
func (p Preset) Selection() (selection.Selection, error) {
	s, err := selection.FromLabels(p.LLC, p.PAD, p.Diabetes)
	if err != nil {
		return selection.Selection{}, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return s, nil
}

type File struct {
	Path    string   `yaml:"-"`
	Presets []Preset `yaml:"presets"`
}

// Load reads and validates a presets file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes presets YAML and checks names are present, unique and every label is known.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	seen := map[string]bool{}
	for i, p := range f.Presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("preset #%d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate preset %q", name)
		}
		seen[name] = true
		f.Presets[i].Name = name
		if _, err := f.Presets[i].Selection(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// Names returns preset names in file order.
func (f *File) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.Presets))
	for i, p := range f.Presets {
		out[i] = p.Name
	}
	return out
}

// Lookup returns the named preset's selection.
func (f *File) Lookup(name string) (selection.Selection, error) {
	if f != nil {
		for _, p := range f.Presets {
			if p.Name == strings.TrimSpace(name) {
				return p.Selection()
			}
		}
	}
	return selection.Selection{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}
