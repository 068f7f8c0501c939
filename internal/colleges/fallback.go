package colleges

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// Fallback is the bundled reference data used when the colleges API is degraded.
type Fallback struct {
	States    []string            `yaml:"states"`
	Districts map[string][]string `yaml:"districts"`
	Colleges  []Institution       `yaml:"colleges"`
}

// ParseFallback decodes fallback data from YAML.
func ParseFallback(data []byte) (*Fallback, error) {
	var fb Fallback
	if err := yaml.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("parse fallback data: %w", err)
	}
	if len(fb.States) == 0 {
		return nil, fmt.Errorf("parse fallback data: no states")
	}
	if fb.Districts == nil {
		fb.Districts = map[string][]string{}
	}
	return &fb, nil
}

// DefaultFallback returns the embedded fallback data.
func DefaultFallback() *Fallback {
	fb, err := ParseFallback(fallbackYAML)
	if err != nil {
		panic(err)
	}
	return fb
}

// StateList returns a copy of the static state list.
func (f *Fallback) StateList() []string {
	return append([]string(nil), f.States...)
}

// DistrictList returns a copy of the static districts for state. Unknown states yield an empty list.
func (f *Fallback) DistrictList(state string) []string {
	out := append([]string(nil), f.Districts[state]...)
	if out == nil {
		out = []string{}
	}
	return out
}

// MatchColleges filters the sample colleges by exact state and case-insensitive city substring.
func (f *Fallback) MatchColleges(state, city string) []Institution {
	needle := strings.ToLower(city)
	out := []Institution{}
	for _, c := range f.Colleges {
		if c.State != state {
			continue
		}
		if !strings.Contains(strings.ToLower(c.City), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}
