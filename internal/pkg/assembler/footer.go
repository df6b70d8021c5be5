package assembler

import "fmt"

const (
	footerFont     = "Helvetica"
	footerFontSize = 10

	footerBand     = 20.0
	footerBaseline = 15.0
	footerLeft     = 15.0
	footerRight    = 25.0
)

var footerColor = [3]int{100, 100, 100}

// Footer is the text stamped at the bottom of a page.
type Footer struct {
	PassportNo string `json:"passport_no"`
	Page       string `json:"page"`
}

func (f Footer) String() string {
	return f.PassportNo + " | " + f.Page
}

// ClearFooter paints the bottom band white so the footer is legible over any
// captured image.
func ClearFooter(c Canvas) {
	w, h := c.PageSize()
	c.FillRect(0, h-footerBand, w, footerBand, 255, 255, 255)
}

// StampFooter writes the passport number on the left and "Page n of total"
// right-aligned on the right.
func StampFooter(c Canvas, documentID string, n, total int) Footer {
	w, h := c.PageSize()
	f := Footer{
		PassportNo: "Passport No: " + documentID,
		Page:       fmt.Sprintf("Page %d of %d", n, total),
	}

	c.SetFont(footerFont, footerFontSize)
	c.SetTextColor(footerColor[0], footerColor[1], footerColor[2])
	c.Text(footerLeft, h-footerBaseline, f.PassportNo)
	c.Text(w-footerRight-c.TextWidth(f.Page), h-footerBaseline, f.Page)
	return f
}
