package assembler

import (
	"github.com/go-pdf/fpdf"
)

// Canvas is the drawing surface of the current page. Coordinates are in
// millimetres from the top-left corner.
type Canvas interface {
	PageSize() (width, height float64)
	SetAlpha(alpha float64)
	Image(name string, x, y, w, h float64)
	FillRect(x, y, w, h float64, r, g, b int)
	SetFont(family string, size float64)
	SetTextColor(r, g, b int)
	TextWidth(s string) float64
	Text(x, y float64, s string)
	RotatedText(x, y, angle float64, s string)
}

// pdfCanvas draws onto the current page of an fpdf document.
type pdfCanvas struct {
	pdf *fpdf.Fpdf
}

func (c *pdfCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

func (c *pdfCanvas) SetAlpha(alpha float64) {
	c.pdf.SetAlpha(alpha, "Normal")
}

func (c *pdfCanvas) Image(name string, x, y, w, h float64) {
	c.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (c *pdfCanvas) FillRect(x, y, w, h float64, r, g, b int) {
	c.pdf.SetFillColor(r, g, b)
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *pdfCanvas) SetFont(family string, size float64) {
	c.pdf.SetFont(family, "", size)
}

func (c *pdfCanvas) SetTextColor(r, g, b int) {
	c.pdf.SetTextColor(r, g, b)
}

func (c *pdfCanvas) TextWidth(s string) float64 {
	return c.pdf.GetStringWidth(s)
}

func (c *pdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, s)
}

// RotatedText draws s rotated counter-clockwise by angle degrees around (x, y).
func (c *pdfCanvas) RotatedText(x, y, angle float64, s string) {
	c.pdf.TransformBegin()
	c.pdf.TransformRotate(angle, x, y)
	c.pdf.Text(x, y, s)
	c.pdf.TransformEnd()
}
