package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocumentIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "2.0", parsed["swagger"])
	paths, ok := parsed["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/nodes", "/edges", "/graph", "/analytics", "/health", "/ready"} {
		assert.Contains(t, paths, p)
	}
}
