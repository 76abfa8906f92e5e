package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Edge connects a source node to a target node.
//
// Weight, Width, ID and Directed are optional. The effective weight is
// resolved in this order:
//  1. Weight, when set
//  2. Width, when set
//  3. 1
//
// Directed only matters when a caller asks for a direction-respecting view of
// the graph; otherwise every edge is treated as bidirectional.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	ID       string   `json:"id,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Directed bool     `json:"directed,omitempty"`
}

// RawWeight returns the declared weight before any clamping: Weight, then
// Width, then 1. Non-finite values resolve to 1.
func (e Edge) RawWeight() float64 {
	var w float64
	switch {
	case e.Weight != nil:
		w = *e.Weight
	case e.Width != nil:
		w = *e.Width
	default:
		return 1
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}

// Clone returns a copy of e that shares no pointers with it.
func (e Edge) Clone() Edge {
	if e.Weight != nil {
		e.Weight = Float64(*e.Weight)
	}
	if e.Width != nil {
		e.Width = Float64(*e.Width)
	}
	return e
}

// Float64 is a helper for building optional numeric edge fields.
func Float64(v float64) *float64 {
	return &v
}

// UnmarshalJSON decodes an edge leniently. Numeric fields accept JSON numbers
// or numeric strings; anything else leaves the field unset. The directed flag
// accepts booleans, non-zero numbers, and the strings "true", "yes" and "1".
// Other strings such as "false", "0" or "no", arrays and objects are
// undirected.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source   string          `json:"source"`
		Target   string          `json:"target"`
		ID       json.RawMessage `json:"id"`
		Weight   json.RawMessage `json:"weight"`
		Width    json.RawMessage `json:"width"`
		Directed json.RawMessage `json:"directed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Edge{
		Source:   raw.Source,
		Target:   raw.Target,
		ID:       parseLooseString(raw.ID),
		Weight:   parseLooseFloat(raw.Weight),
		Width:    parseLooseFloat(raw.Width),
		Directed: parseLooseBool(raw.Directed),
	}
	return nil
}

func parseLooseFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseLooseBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

func parseLooseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Numeric ids are kept in their literal form.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
