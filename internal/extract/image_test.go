// internal/extract/image_test.go
package extract

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func hasWarningContaining(result *Result, substr string) bool {
	for _, w := range result.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestExtract_ImageRecordsEvidence(t *testing.T) {
	d := newTestDispatcher()

	result := d.Extract(encodePNG(t, 800, 600), "panel_photo.png")

	assert.Empty(t, result.FieldUpdates)
	assert.Empty(t, result.TableUpdates)
	assert.Equal(t, "image", result.Metadata["kind"])
	assert.Equal(t, "png", result.Metadata["format"])
	assert.Equal(t, 800, result.Metadata["width"])
	assert.Equal(t, 600, result.Metadata["height"])
	require.NotEmpty(t, result.Messages)
}

func TestExtract_LowResImageWarns(t *testing.T) {
	d := newTestDispatcher()

	result := d.Extract(encodePNG(t, 320, 240), "thumb.png")

	require.NotEmpty(t, result.Warnings)
	assert.True(t, hasWarningContaining(result, "low resolution"), "expected a low resolution warning, got %v", result.Warnings)
}

func TestExtract_TinyImageWarns(t *testing.T) {
	d := newTestDispatcher()

	data := encodePNG(t, 16, 16)
	require.Less(t, len(data), minUsefulImageBytes)

	result := d.Extract(data, "dot.png")

	assert.True(t, hasWarningContaining(result, "very small"), "expected a very small warning, got %v", result.Warnings)
}

func TestExtract_CorruptImageKeepsDigest(t *testing.T) {
	d := newTestDispatcher()

	result := d.Extract([]byte("not an image at all, just bytes"), "photo.jpg")

	assert.NotEmpty(t, result.Digest)
	assert.Equal(t, "image", result.Metadata["kind"])
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "could not read image dimensions")
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, result.Messages[0], "recorded")
}
