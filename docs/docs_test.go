package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	paths, ok := parsed["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/registration", "/authorization", "/logout", "/files", "/files/disk",
		"/files/{file_id}", "/files/{pk}/delete", "/files/{file_id}/download", "/files/{file_id}/accesses", "/shared"} {
		assert.Contains(t, paths, p)
	}
}
