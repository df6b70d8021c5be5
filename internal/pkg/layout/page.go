package layout

// PageKind identifies one of the four captured passport pages.
type PageKind string

const (
	KindCover         PageKind = "cover"
	KindFirstDetails  PageKind = "first-details"
	KindSecondDetails PageKind = "second-details"
	KindClosing       PageKind = "closing"
)

// Kinds in document order.
var Kinds = []PageKind{KindCover, KindFirstDetails, KindSecondDetails, KindClosing}

// Background of a rendered page
type Background string

const (
	BackgroundDark  Background = "dark"  // green gradient, white text
	BackgroundLight Background = "light" // #f0f8f0
)

type Field struct {
	Label string
	Value string
}

type Section struct {
	Heading string
	Fields  []Field
}

// Page is an immutable description of one printable page. It carries no
// rendering state: the same descriptor always renders to the same HTML.
type Page struct {
	Kind       PageKind
	Background Background

	Seal     []string // ring seal text on the cover
	Headline []string // large centred title lines
	Sections []Section
	Notices  []string
	Issuer   []string
	Footnote string

	PhotoSrc             string
	SignatureSrc         string
	SignaturePlaceholder string

	EmblemSrc     string
	EmblemOpacity float64
}

// HasPhoto reports whether the page shows the bearer photo.
func (p Page) HasPhoto() bool {
	return p.PhotoSrc != ""
}

// Field returns the value of the first field with the given label.
func (p Page) Field(label string) (string, bool) {
	for _, s := range p.Sections {
		for _, f := range s.Fields {
			if f.Label == label {
				return f.Value, true
			}
		}
	}
	return "", false
}

// Section returns the section with the given heading.
func (p Page) Section(heading string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Heading == heading {
			return s, true
		}
	}
	return Section{}, false
}
