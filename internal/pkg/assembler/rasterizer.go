package assembler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"

	"passport-admin-go/internal/pkg/layout"
)

// Raster is a captured page image.
type Raster struct {
	PNG    []byte
	Width  int
	Height int
}

// Rasterizer captures one page descriptor as a PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, page layout.Page) (*Raster, error)
}

// Screenshotter renders HTML to a PNG of the given pixel size.
type Screenshotter interface {
	Screenshot(ctx context.Context, html []byte, width, height int) ([]byte, error)
}

// HTMLRasterizer renders a page to HTML and screenshots it.
type HTMLRasterizer struct {
	renderer *layout.Renderer
	shots    Screenshotter
}

func NewHTMLRasterizer(renderer *layout.Renderer, shots Screenshotter) *HTMLRasterizer {
	return &HTMLRasterizer{renderer: renderer, shots: shots}
}

func (r *HTMLRasterizer) Rasterize(ctx context.Context, page layout.Page) (*Raster, error) {
	html, err := r.renderer.Render(page)
	if err != nil {
		return nil, err
	}

	width, height := r.renderer.Viewport()
	data, err := r.shots.Screenshot(ctx, html, width, height)
	if err != nil {
		return nil, err
	}
	return DecodeRaster(data)
}

// DecodeRaster reads the pixel size of a PNG.
func DecodeRaster(data []byte) (*Raster, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("unexpected page image format %q", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("empty page image %dx%d", cfg.Width, cfg.Height)
	}
	return &Raster{PNG: data, Width: cfg.Width, Height: cfg.Height}, nil
}
