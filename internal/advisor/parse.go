package advisor

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"pathfinder-backend/internal/shared/apperr"
)

const excerptLimit = 200

var (
	jsonFence     = regexp.MustCompile("(?i)```json\\s*")
	leadingFence  = regexp.MustCompile("^\\s*```\\s*")
	trailingFence = regexp.MustCompile("```\\s*$")
	leadingJSON   = regexp.MustCompile("^\\s*json\\s*")
)

// StripFences removes markdown code fences and a leading "json" tag from a model reply.
func StripFences(raw string) string {
	s := jsonFence.ReplaceAllString(raw, "")
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = leadingJSON.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

type wireResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	CareerParagraph string           `json:"careerParagraph"`
	Roadmap         struct {
		Nodes []wireNode `json:"nodes"`
		Edges []wireEdge `json:"edges"`
	} `json:"roadmap"`
}

type wireNode struct {
	ID    flexString `json:"id"`
	Type  string     `json:"type"`
	Label string     `json:"label"`
	Data  struct {
		Label string `json:"label"`
	} `json:"data"`
	Position Position       `json:"position"`
	Style    map[string]any `json:"style"`
}

type wireEdge struct {
	ID       flexString     `json:"id"`
	Source   flexString     `json:"source"`
	Target   flexString     `json:"target"`
	Animated bool           `json:"animated"`
	Style    map[string]any `json:"style"`
}

// flexString accepts a JSON string or number. Numbers are stored in their
// shortest decimal form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return err
	}
	// 1, 1.0 and 1e0 name the same node.
	*f = flexString(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

// Parse turns a raw model reply into a validated Result.
func Parse(raw string) (Result, error) {
	cleaned := StripFences(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return Result{}, &apperr.UpstreamFormatError{Excerpt: excerpt(cleaned), Err: err}
	}

	if missing := missingSections(top); len(missing) > 0 {
		return Result{}, &apperr.IncompleteResponseError{Missing: missing}
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return Result{}, &apperr.UpstreamFormatError{Excerpt: excerpt(cleaned), Err: err}
	}

	res := Result{
		Recommendations: wire.Recommendations,
		CareerParagraph: wire.CareerParagraph,
		Roadmap: Roadmap{
			Nodes: make([]Node, 0, len(wire.Roadmap.Nodes)),
			Edges: make([]Edge, 0, len(wire.Roadmap.Edges)),
		},
	}
	if res.Recommendations == nil {
		res.Recommendations = []Recommendation{}
	}
	for _, n := range wire.Roadmap.Nodes {
		label := n.Data.Label
		if label == "" {
			label = n.Label
		}
		res.Roadmap.Nodes = append(res.Roadmap.Nodes, Node{
			ID:       strings.TrimSpace(string(n.ID)),
			Type:     n.Type,
			Label:    label,
			Position: n.Position,
			Style:    n.Style,
		})
	}
	for _, e := range wire.Roadmap.Edges {
		res.Roadmap.Edges = append(res.Roadmap.Edges, Edge{
			ID:       strings.TrimSpace(string(e.ID)),
			Source:   strings.TrimSpace(string(e.Source)),
			Target:   strings.TrimSpace(string(e.Target)),
			Animated: e.Animated,
			Style:    e.Style,
		})
	}

	if err := ValidateRoadmap(res.Roadmap); err != nil {
		return Result{}, err
	}
	return res, nil
}

func missingSections(top map[string]json.RawMessage) []string {
	var missing []string
	for _, key := range []string{"recommendations", "careerParagraph", "roadmap"} {
		if !truthy(top[key]) {
			missing = append(missing, key)
		}
	}
	if !truthy(top["roadmap"]) {
		return missing
	}
	var roadmap map[string]json.RawMessage
	_ = json.Unmarshal(top["roadmap"], &roadmap)
	for _, key := range []string{"nodes", "edges"} {
		if !truthy(roadmap[key]) {
			missing = append(missing, "roadmap."+key)
		}
	}
	return missing
}

// truthy treats absent, null, false, 0 and "" as missing. Empty arrays and objects count as present.
func truthy(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLimit {
		return s
	}
	return string(r[:excerptLimit])
}
