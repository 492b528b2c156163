package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Hex(t *testing.T) {
	h := SHA256Hex([]byte("scoreboard"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, SHA256Hex([]byte("scoreboard")))
	assert.NotEqual(t, h, SHA256Hex([]byte("scoreboard2")))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", StripCodeFences("plain"))
}

func TestSniffMime(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

	assert.Equal(t, "image/jpeg", SniffMimeHTTP(jpeg))
	assert.Equal(t, "image/png", SniffMimeHTTP(png))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP([]byte("nope")))

	assert.Equal(t, "JPEG", SniffMimeForOCR(jpeg))
	assert.Equal(t, "PNG", SniffMimeForOCR(png))
	assert.Equal(t, "", SniffMimeForOCR([]byte("nope")))
}

func TestFixJSONSchemaStrict(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"ideas": map[string]any{
				"type": "array",
				"items": map[string]any{
					"properties": map[string]any{
						"duo": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
	FixJSONSchemaStrict(schema)

	assert.Equal(t, "object", schema["type"])
	require.Contains(t, schema, "required")
	assert.ElementsMatch(t, []any{"name", "ideas"}, schema["required"])

	items := schema["properties"].(map[string]any)["ideas"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
	assert.Equal(t, []any{"duo"}, items["required"])
}
