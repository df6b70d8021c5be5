package emblem

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"passport-admin-go/internal/pkg/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	res *fetch.Resource
	err error
}

func (s stubFetcher) Get(context.Context, string) (*fetch.Resource, error) {
	return s.res, s.err
}

func TestPlaceholder(t *testing.T) {
	e := Placeholder()
	require.True(t, e.Placeholder)

	img, err := png.Decode(bytes.NewReader(e.PNG))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, [3]uint32{0, 0x6666, 0}, [3]uint32{r, g, b}, "background is #006600")

	white := 0
	bounds := image.Rectangle{Min: image.Pt(200, 200)}
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA); c.R == 0xff && c.G == 0xff {
				white++
				bounds = bounds.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	assert.Greater(t, white, 0, "motto must be drawn")
	assert.Equal(t, []string{"KHOTSO", "PULA", "NALA"}, motto)

	// KHOTSO alone is six doubled 7px cells wide
	assert.GreaterOrEqual(t, bounds.Dx(), 70, "glyphs are drawn at double size")
	// three lines between the 80 and 140 baselines
	assert.Greater(t, bounds.Dy(), 70)
	assert.Less(t, bounds.Min.Y, 80)
	assert.LessOrEqual(t, bounds.Max.Y, 150)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes and re-encodes to png", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 30, 40))
		buf := new(bytes.Buffer)
		require.NoError(t, jpeg.Encode(buf, src, nil))

		e := Load(ctx, stubFetcher{res: &fetch.Resource{Data: buf.Bytes(), ContentType: "image/jpeg"}}, "https://cdn.example/arms.jpg")
		assert.False(t, e.Placeholder)
		assert.Equal(t, 30, e.Width)
		assert.Equal(t, 40, e.Height)
		_, err := png.Decode(bytes.NewReader(e.PNG))
		assert.NoError(t, err)
	})

	t.Run("fetch failure falls back", func(t *testing.T) {
		e := Load(ctx, stubFetcher{err: errors.New("timeout")}, "https://cdn.example/arms.png")
		assert.True(t, e.Placeholder)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		e := Load(ctx, stubFetcher{res: &fetch.Resource{Data: []byte("not an image")}}, "https://cdn.example/arms.png")
		assert.True(t, e.Placeholder)
	})

	t.Run("no url", func(t *testing.T) {
		assert.True(t, Load(ctx, nil, "").Placeholder)
	})
}
