package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

const (
	templateSuffix = ".gohtml"

	// CSS pixels of a 210mm x 297mm page at 96 dpi
	PageWidthPx  = 794
	PageHeightPx = 1123
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Renderer turns page descriptors into standalone HTML documents sized for
// a screenshot at the configured scale factor.
type Renderer struct {
	templates map[PageKind]*template.Template
	scale     int
}

type renderData struct {
	Page      Page
	Scale     int
	Emblem    template.URL
	Photo     template.URL
	Signature template.URL
}

func NewRenderer(scale int) (*Renderer, error) {
	if scale < 1 {
		scale = 1
	}

	base, err := template.ParseFS(templateFS, "templates/base"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf("parse error in base template: %w", err)
	}

	r := &Renderer{templates: make(map[PageKind]*template.Template, len(Kinds)), scale: scale}
	for _, kind := range Kinds {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+string(kind)+templateSuffix); err != nil {
			return nil, fmt.Errorf("parse error in %s template: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

// Viewport is the screenshot size in device pixels.
func (r *Renderer) Viewport() (width, height int) {
	return PageWidthPx * r.scale, PageHeightPx * r.scale
}

func (r *Renderer) Scale() int {
	return r.scale
}

func (r *Renderer) Render(p Page) ([]byte, error) {
	t, ok := r.templates[p.Kind]
	if !ok {
		return nil, fmt.Errorf("no template for page kind %q", p.Kind)
	}

	data := renderData{
		Page:      p,
		Scale:     r.scale,
		Emblem:    ImageSource(p.EmblemSrc),
		Photo:     ImageSource(p.PhotoSrc),
		Signature: ImageSource(p.SignatureSrc),
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "base"+templateSuffix, data); err != nil {
		return nil, fmt.Errorf("failed to render %s page: %w", p.Kind, err)
	}
	return buf.Bytes(), nil
}

// ImageSource admits inline image data and http(s) URLs; anything else is dropped.
func ImageSource(src string) template.URL {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"):
		return template.URL(src)
	}
	return ""
}
