package assembler

const (
	watermarkOpacity = 0.15

	// emblem square sizes relative to a 210mm wide page
	centerEmblemRatio   = 80.0 / 210.0
	quadrantEmblemRatio = 60.0 / 210.0

	titleMarkText    = "LESOTHO PASSPORT"
	titleMarkSize    = 40
	titleMarkAngle   = 45
	titleMarkOpacity = 0.3
)

var (
	fillerTint     = [3]int{240, 248, 240}
	titleMarkColor = [3]int{0, 100, 0}

	titleMarkPositions = [][2]float64{
		{30, 50},
		{80, 100},
		{130, 150},
		{180, 200},
		{30, 250},
	}
)

// ApplyWatermark stamps the emblem once at the page centre and once at each
// quadrant centre. Opacity is restored to 1 afterwards. An empty image name
// leaves the page untouched.
func ApplyWatermark(c Canvas, image string) bool {
	if image == "" {
		return false
	}

	w, h := c.PageSize()
	big := w * centerEmblemRatio
	small := w * quadrantEmblemRatio

	c.SetAlpha(watermarkOpacity)
	c.Image(image, w/2-big/2, h/2-big/2, big, big)
	for _, q := range [][2]float64{
		{w / 4, h / 4},
		{w * 3 / 4, h * 3 / 4},
		{w / 4, h * 3 / 4},
		{w * 3 / 4, h / 4},
	} {
		c.Image(image, q[0]-small/2, q[1]-small/2, small, small)
	}
	c.SetAlpha(1)
	return true
}

// PaintFiller turns the current page into a blank passport page: tinted
// background, emblem watermark and diagonal title marks.
func PaintFiller(c Canvas, image string) (watermarked bool, marks int) {
	w, h := c.PageSize()
	c.FillRect(0, 0, w, h, fillerTint[0], fillerTint[1], fillerTint[2])

	watermarked = ApplyWatermark(c, image)

	c.SetFont(footerFont, titleMarkSize)
	c.SetTextColor(titleMarkColor[0], titleMarkColor[1], titleMarkColor[2])
	c.SetAlpha(titleMarkOpacity)
	for _, p := range titleMarkPositions {
		c.RotatedText(p[0], p[1], titleMarkAngle, titleMarkText)
	}
	c.SetAlpha(1)

	return watermarked, len(titleMarkPositions)
}
