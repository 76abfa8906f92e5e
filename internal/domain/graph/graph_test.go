package graph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeMap_PreservesInsertionOrder(t *testing.T) {
	m := NewNodeMap(
		Node{ID: "c", Label: "C"},
		Node{ID: "a", Label: "A"},
		Node{ID: "b", Label: "B"},
	)

	assert.Equal(t, []string{"c", "a", "b"}, m.IDs())
	assert.Equal(t, 3, m.Len())

	// Replacing keeps the original slot.
	m.Put(Node{ID: "a", Label: "A2"})
	assert.Equal(t, []string{"c", "a", "b"}, m.IDs())
	n, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", n.Label)
}

func TestNodeMap_ZeroValue(t *testing.T) {
	var m NodeMap
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))
	assert.Empty(t, m.IDs())

	m.Put(Node{ID: "x"})
	assert.True(t, m.Has("x"))
}

func TestNodeMap_JSONRoundTripKeepsOrder(t *testing.T) {
	input := `{"zeta":{"id":"zeta","x":1,"y":2,"label":"Z"},"alpha":{"x":3,"y":4,"label":"A"},"mid":{"id":"mid"}}`

	var m NodeMap
	require.NoError(t, json.Unmarshal([]byte(input), &m))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.IDs())

	alpha, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", alpha.ID, "id falls back to the key")
	assert.Equal(t, 3.0, alpha.X)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t,
		`{"zeta":{"id":"zeta","x":1,"y":2,"label":"Z"},"alpha":{"id":"alpha","x":3,"y":4,"label":"A"},"mid":{"id":"mid","x":0,"y":0,"label":""}}`,
		string(out))
}

func TestNodeMap_UnmarshalRejectsArrays(t *testing.T) {
	var m NodeMap
	err := json.Unmarshal([]byte(`[{"id":"a"}]`), &m)
	assert.Error(t, err)
}

func TestNodeMap_UnmarshalNull(t *testing.T) {
	var m NodeMap
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0, m.Len())
}

func TestEdge_RawWeight(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want float64
	}{
		{name: "weight wins", edge: Edge{Weight: Float64(3), Width: Float64(7)}, want: 3},
		{name: "width fallback", edge: Edge{Width: Float64(7)}, want: 7},
		{name: "default one", edge: Edge{}, want: 1},
		{name: "zero weight kept", edge: Edge{Weight: Float64(0)}, want: 0},
		{name: "negative weight kept", edge: Edge{Weight: Float64(-2)}, want: -2},
		{name: "nan resolves to one", edge: Edge{Weight: Float64(math.NaN())}, want: 1},
		{name: "inf resolves to one", edge: Edge{Width: Float64(math.Inf(1))}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.edge.RawWeight())
		})
	}
}

func TestEdge_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, e Edge)
	}{
		{
			name:  "plain edge",
			input: `{"source":"a","target":"b"}`,
			check: func(t *testing.T, e Edge) {
				assert.Equal(t, "a", e.Source)
				assert.Equal(t, "b", e.Target)
				assert.Nil(t, e.Weight)
				assert.Nil(t, e.Width)
				assert.False(t, e.Directed)
				assert.Empty(t, e.ID)
			},
		},
		{
			name:  "numeric string weight",
			input: `{"source":"a","target":"b","weight":"2.5"}`,
			check: func(t *testing.T, e Edge) {
				require.NotNil(t, e.Weight)
				assert.Equal(t, 2.5, *e.Weight)
			},
		},
		{
			name:  "garbage weight is absent",
			input: `{"source":"a","target":"b","weight":"heavy","width":4}`,
			check: func(t *testing.T, e Edge) {
				assert.Nil(t, e.Weight)
				assert.Equal(t, 4.0, e.RawWeight())
			},
		},
		{
			name:  "directed variants",
			input: `{"source":"a","target":"b","directed":"yes"}`,
			check: func(t *testing.T, e Edge) {
				assert.True(t, e.Directed)
			},
		},
		{
			name:  "directed false string",
			input: `{"source":"a","target":"b","directed":"false"}`,
			check: func(t *testing.T, e Edge) {
				assert.False(t, e.Directed)
			},
		},
		{
			name:  "directed falsy strings and containers",
			input: `{"source":"a","target":"b","directed":"no"}`,
			check: func(t *testing.T, e Edge) {
				assert.False(t, e.Directed)
				for _, v := range []string{`"0"`, `"no"`, `[1]`, `{"x":1}`, `null`} {
					var other Edge
					require.NoError(t, json.Unmarshal([]byte(`{"source":"a","target":"b","directed":`+v+`}`), &other))
					assert.False(t, other.Directed, v)
				}
			},
		},
		{
			name:  "numeric id",
			input: `{"source":"a","target":"b","id":42}`,
			check: func(t *testing.T, e Edge) {
				assert.Equal(t, "42", e.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Edge
			require.NoError(t, json.Unmarshal([]byte(tt.input), &e))
			tt.check(t, e)
		})
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := NewSnapshot(
		[]Node{{ID: "a"}, {ID: "b"}},
		[]Edge{{Source: "a", Target: "b", Weight: Float64(2)}},
	)

	c := s.Clone()
	*c.Edges[0].Weight = 9
	c.Edges[0].Source = "z"
	c.Nodes.Put(Node{ID: "c"})

	assert.Equal(t, 2.0, *s.Edges[0].Weight)
	assert.Equal(t, "a", s.Edges[0].Source)
	assert.Equal(t, 2, s.Nodes.Len())
	assert.Equal(t, 3, c.Nodes.Len())
}

func TestSnapshot_JSONDecode(t *testing.T) {
	input := `{"nodes":{"n2":{"id":"n2"},"n1":{"id":"n1"}},"edges":[{"source":"n2","target":"n1","width":3}]}`

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(input), &s))

	assert.Equal(t, []string{"n2", "n1"}, s.Nodes.IDs())
	require.Len(t, s.Edges, 1)
	assert.Equal(t, 3.0, s.Edges[0].RawWeight())
	assert.False(t, s.IsEmpty())
}
