package frontend

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const iconPNGSize = 64

var (
	iconPNGOnce sync.Once
	iconPNG     []byte
	iconPNGErr  error
)

// iconAsPNG rasterises the embedded SVG icon once and reuses the result.
func iconAsPNG() ([]byte, error) {
	iconPNGOnce.Do(func() {
		data, err := assetsFS.ReadFile("views/icon.svg")
		if err != nil {
			iconPNGErr = fmt.Errorf("failed to read icon.svg: %w", err)
			return
		}
		iconPNG, iconPNGErr = renderSVGToPNG(data, iconPNGSize, iconPNGSize)
	})
	return iconPNG, iconPNGErr
}

// renderSVGToPNG renders an SVG byte slice into a PNG with the given target dimensions.
func renderSVGToPNG(svgData []byte, targetW, targetH int) ([]byte, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("invalid target dimensions for SVG rendering: %dx%d", targetW, targetH)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	// transparent background
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Transparent}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode rendered SVG as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
