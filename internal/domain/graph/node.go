package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Default values applied to nodes created without explicit attributes.
const (
	DefaultNodeX     = 100.0
	DefaultNodeY     = 100.0
	DefaultNodeLabel = "Node"
)

// Node is a vertex of the graph. Position and label are display attributes
// only; analytics never reads them.
type Node struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// NodeMap is an insertion-ordered map of node id to Node.
//
// Iteration order is the order in which ids were first inserted. Replacing an
// existing id keeps its original position. Component counting and path
// tie-breaks depend on this order, so it is preserved through JSON decoding
// as well.
//
// The zero value is an empty map ready to use.
type NodeMap struct {
	order []string
	nodes map[string]Node
}

// NewNodeMap builds a NodeMap from nodes in the given order.
func NewNodeMap(nodes ...Node) NodeMap {
	var m NodeMap
	for _, n := range nodes {
		m.Put(n)
	}
	return m
}

// Put inserts or replaces a node keyed by its ID.
func (m *NodeMap) Put(n Node) {
	if m.nodes == nil {
		m.nodes = make(map[string]Node)
	}
	if _, exists := m.nodes[n.ID]; !exists {
		m.order = append(m.order, n.ID)
	}
	m.nodes[n.ID] = n
}

// Get returns the node stored under id.
func (m NodeMap) Get(id string) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Has reports whether id is present.
func (m NodeMap) Has(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (m NodeMap) Len() int {
	return len(m.order)
}

// IDs returns the node ids in insertion order. The returned slice is a copy.
func (m NodeMap) IDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Values returns the nodes in insertion order.
func (m NodeMap) Values() []Node {
	out := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Clone returns a deep copy of the map.
func (m NodeMap) Clone() NodeMap {
	var out NodeMap
	for _, id := range m.order {
		out.putKeyed(id, m.nodes[id])
	}
	return out
}

// MarshalJSON encodes the map as a JSON object whose keys follow insertion order.
func (m NodeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.nodes[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of nodes keeping the key order of the
// document. A node without an "id" field takes its key as id. A JSON null
// decodes to an empty map.
func (m *NodeMap) UnmarshalJSON(data []byte) error {
	*m = NodeMap{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("nodes: expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("nodes: expected string key, got %v", tok)
		}

		var n Node
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("nodes[%q]: %w", key, err)
		}
		if n.ID == "" {
			n.ID = key
		}
		// The key is authoritative for lookups, matching how edges refer to nodes.
		m.putKeyed(key, n)
	}

	_, err = dec.Token()
	return err
}

func (m *NodeMap) putKeyed(key string, n Node) {
	if m.nodes == nil {
		m.nodes = make(map[string]Node)
	}
	if _, exists := m.nodes[key]; !exists {
		m.order = append(m.order, key)
	}
	m.nodes[key] = n
}
