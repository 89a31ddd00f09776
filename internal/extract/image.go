// internal/extract/image.go
package extract

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// Files smaller than this are flagged as probably-useless evidence.
	minUsefulImageBytes = 8 * 1024
	// Sub-VGA resolution gets a low-quality warning.
	minImageWidth  = 640
	minImageHeight = 480
)

// extractImage records an image as test evidence. Images never fill
// fields; the digest and metadata feed duplicate detection and the
// evidence list.
func (d *Dispatcher) extractImage(data []byte, filename string, result *Result) {
	result.Metadata["kind"] = "image"

	if len(data) < minUsefulImageBytes {
		result.AddWarning("%s is very small (%d bytes), it may not be usable evidence", filename, len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Decoding capability missing or file corrupt; keep the digest
		// for duplicate detection either way.
		result.AddWarning("could not read image dimensions from %s: %v", filename, err)
		result.AddMessage("recorded %s as evidence", filename)
		return
	}

	result.Metadata["format"] = format
	result.Metadata["width"] = cfg.Width
	result.Metadata["height"] = cfg.Height

	if cfg.Width < minImageWidth || cfg.Height < minImageHeight {
		result.AddWarning("%s is low resolution (%dx%d), details may be unreadable", filename, cfg.Width, cfg.Height)
	}

	result.AddMessage("recorded %s as evidence (%dx%d %s)", filename, cfg.Width, cfg.Height, format)
}
