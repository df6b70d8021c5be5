package assembler

import "fmt"

// recordingCanvas logs every drawing call for assertions.
type recordingCanvas struct {
	width, height float64
	alpha         float64
	ops           []string
	images        []imageOp
	texts         []textOp
	fills         []fillOp
	alphas        []float64
	fontSize      float64
	textColor     [3]int
}

type imageOp struct {
	name       string
	x, y, w, h float64
	alpha      float64
}

type textOp struct {
	x, y, angle float64
	text        string
	size        float64
	color       [3]int
	alpha       float64
}

type fillOp struct {
	x, y, w, h float64
	color      [3]int
}

func newRecordingCanvas(w, h float64) *recordingCanvas {
	return &recordingCanvas{width: w, height: h, alpha: 1}
}

func (c *recordingCanvas) PageSize() (float64, float64) { return c.width, c.height }

func (c *recordingCanvas) SetAlpha(alpha float64) {
	c.alpha = alpha
	c.alphas = append(c.alphas, alpha)
	c.ops = append(c.ops, fmt.Sprintf("alpha %.2f", alpha))
}

func (c *recordingCanvas) Image(name string, x, y, w, h float64) {
	c.images = append(c.images, imageOp{name, x, y, w, h, c.alpha})
	c.ops = append(c.ops, "image")
}

func (c *recordingCanvas) FillRect(x, y, w, h float64, r, g, b int) {
	c.fills = append(c.fills, fillOp{x, y, w, h, [3]int{r, g, b}})
	c.ops = append(c.ops, "fill")
}

func (c *recordingCanvas) SetFont(_ string, size float64) {
	c.fontSize = size
	c.ops = append(c.ops, "font")
}

func (c *recordingCanvas) SetTextColor(r, g, b int) {
	c.textColor = [3]int{r, g, b}
	c.ops = append(c.ops, "color")
}

// TextWidth assumes 2mm per character.
func (c *recordingCanvas) TextWidth(s string) float64 { return float64(len(s)) * 2 }

func (c *recordingCanvas) Text(x, y float64, s string) {
	c.texts = append(c.texts, textOp{x: x, y: y, text: s, size: c.fontSize, color: c.textColor, alpha: c.alpha})
	c.ops = append(c.ops, "text")
}

func (c *recordingCanvas) RotatedText(x, y, angle float64, s string) {
	c.texts = append(c.texts, textOp{x: x, y: y, angle: angle, text: s, size: c.fontSize, color: c.textColor, alpha: c.alpha})
	c.ops = append(c.ops, "rotated-text")
}
