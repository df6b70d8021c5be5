package emblem

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/logger"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderSize = 200
	// basicfont glyphs are 13px tall; doubled they approach a 20px bold face
	glyphScale = 2
)

var (
	emblemGreen = color.RGBA{R: 0x00, G: 0x66, B: 0x00, A: 0xff}
	// Motto shown on the placeholder when the coat of arms is unavailable
	motto = []string{"KHOTSO", "PULA", "NALA"}
	// Baseline of each motto word on the full-size placeholder
	mottoBaselines = []int{80, 110, 140}
)

// Emblem is the watermark graphic stamped on passport pages.
type Emblem struct {
	PNG         []byte
	Width       int
	Height      int
	Placeholder bool
}

type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Resource, error)
}

// Load downloads the coat of arms from url. Any failure, including an empty
// url or an undecodable image, yields the synthesized placeholder.
func Load(ctx context.Context, fetcher Fetcher, url string) *Emblem {
	if url != "" && fetcher != nil {
		e, err := fromURL(ctx, fetcher, url)
		if err == nil {
			return e
		}
		logger.Warn("Failed to load emblem, using placeholder", zap.String("url", url), zap.Error(err))
	}
	return Placeholder()
}

func fromURL(ctx context.Context, fetcher Fetcher, url string) (*Emblem, error) {
	res, err := fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(res.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode emblem: %w", err)
	}

	// the document writer embeds PNG only
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode emblem: %w", err)
	}

	b := img.Bounds()
	return &Emblem{PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// Placeholder draws a green square carrying the national motto in white.
func Placeholder() *Emblem {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: emblemGreen}, image.Point{}, draw.Src)

	// the motto is drawn at reduced size and scaled up so the glyphs stay crisp
	small := placeholderSize / glyphScale
	mask := image.NewRGBA(image.Rect(0, 0, small, small))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	for i, word := range motto {
		width := d.MeasureString(word).Ceil()
		d.Dot = fixed.P((small-width)/2, mottoBaselines[i]/glyphScale)
		d.DrawString(word)
	}
	xdraw.NearestNeighbor.Scale(img, img.Bounds(), mask, mask.Bounds(), xdraw.Over, nil)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		// encoding an in-memory RGBA image does not fail
		panic(err)
	}
	return &Emblem{
		PNG:         buf.Bytes(),
		Width:       placeholderSize,
		Height:      placeholderSize,
		Placeholder: true,
	}
}
