package advisor

import (
	"strings"
	"time"
)

// Status is the advisor session lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Profile is the free-text description a student submits.
type Profile struct {
	Interests string `json:"interests"`
	Strengths string `json:"strengths"`
	Goals     string `json:"goals"`
}

// Missing lists the profile fields that are blank.
func (p Profile) Missing() []string {
	var out []string
	if strings.TrimSpace(p.Interests) == "" {
		out = append(out, "interests")
	}
	if strings.TrimSpace(p.Strengths) == "" {
		out = append(out, "strengths")
	}
	if strings.TrimSpace(p.Goals) == "" {
		out = append(out, "goals")
	}
	return out
}

// Recommendation is one suggested course or stream.
type Recommendation struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// Position is a node coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a roadmap graph node.
type Node struct {
	ID        string         `json:"id"`
	Type      string         `json:"type,omitempty"`
	Label     string         `json:"label"`
	Position  Position       `json:"position"`
	Style     map[string]any `json:"style,omitempty"`
	StyleHint string         `json:"styleHint,omitempty"`
}

// Edge connects two roadmap nodes.
type Edge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Animated bool           `json:"animated,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
}

// Roadmap is the generated education-to-career graph.
type Roadmap struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Result is a validated generation reply.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	CareerParagraph string           `json:"careerParagraph"`
	Roadmap         Roadmap          `json:"roadmap"`
}

// IsZero reports whether r carries no generated content.
func (r Result) IsZero() bool {
	return len(r.Recommendations) == 0 && r.CareerParagraph == "" && len(r.Roadmap.Nodes) == 0
}

// HasCourse reports whether name matches a recommendation, ignoring case and surrounding space.
func (r Result) HasCourse(name string) bool {
	name = strings.TrimSpace(name)
	for _, rec := range r.Recommendations {
		if strings.EqualFold(strings.TrimSpace(rec.Name), name) {
			return true
		}
	}
	return false
}

// SavedRoadmap is a persisted snapshot of a ready advisor session.
type SavedRoadmap struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Profile    Profile   `json:"profile"`
	Result     Result    `json:"result"`
	StorageKey string    `json:"storageKey"`
	CreatedAt  time.Time `json:"createdAt"`
}
