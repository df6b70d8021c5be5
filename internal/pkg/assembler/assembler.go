package assembler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"passport-admin-go/internal/pkg/emblem"
	"passport-admin-go/internal/pkg/layout"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"github.com/go-pdf/fpdf"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	// ErrRasterize wraps any failure to capture one of the four page images
	ErrRasterize = errors.New("page rasterization failed")
	// ErrPageCountMismatch is returned when the document does not have the booklet's page count
	ErrPageCountMismatch = errors.New("page count mismatch")
	// ErrInvalidInput is returned when the page descriptors are missing or out of order
	ErrInvalidInput = errors.New("invalid assembly input")
)

const emblemImageName = "emblem"

// PageKind of a page in the assembled document
type PageKind string

const (
	PageCover   PageKind = "cover"
	PageDetails PageKind = "details"
	PageFiller  PageKind = "filler"
	PageClosing PageKind = "closing"
)

// PageInfo describes one page of the assembled document.
type PageInfo struct {
	Number      int      `json:"number"`
	Kind        PageKind `json:"kind"`
	Footer      Footer   `json:"footer"`
	Watermarked bool     `json:"watermarked"`
	TitleMarks  int      `json:"title_marks"`
}

// Input to a single assembly.
type Input struct {
	DocumentID   string
	PassportType string
	// Pages holds cover, first details, second details and closing, in that order.
	Pages []layout.Page
}

// Document is a finished passport PDF.
type Document struct {
	Filename string
	PDF      []byte
	Width    float64
	Height   float64
	Pages    []PageInfo
}

type Assembler struct {
	rasterizer Rasterizer
	emblem     *emblem.Emblem
	verify     bool
}

type Option func(*Assembler)

// WithoutVerification skips re-parsing the output to check its page count.
func WithoutVerification() Option {
	return func(a *Assembler) {
		a.verify = false
	}
}

func New(rasterizer Rasterizer, e *emblem.Emblem, opts ...Option) *Assembler {
	a := &Assembler{rasterizer: rasterizer, emblem: e, verify: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the document page by page. Any failure aborts the whole
// assembly; no partial document is ever returned.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*Document, error) {
	ctx, span := tracing.StartSpan(ctx, "Assembler.Assemble")
	defer span.End()
	span.SetAttributes(
		attribute.String("passport.id", in.DocumentID),
		attribute.String("passport.type", in.PassportType),
	)

	start := time.Now()
	doc, err := a.assemble(ctx, in)
	metrics.PassportGenerationDuration.WithLabelValues(in.PassportType).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PassportGenerationTotal.WithLabelValues("error").Inc()
		tracing.RecordError(ctx, err)
		logger.Error("Passport assembly failed",
			zap.String("document_id", in.DocumentID),
			zap.Error(err))
		return nil, err
	}

	metrics.PassportGenerationTotal.WithLabelValues("success").Inc()
	metrics.PassportFileSizeBytes.WithLabelValues(in.PassportType).Observe(float64(len(doc.PDF)))
	logger.Info("Passport assembled",
		zap.String("document_id", in.DocumentID),
		zap.Int("pages", len(doc.Pages)),
		zap.Int("bytes", len(doc.PDF)),
		zap.Duration("duration", time.Since(start)))
	return doc, nil
}

func (a *Assembler) assemble(ctx context.Context, in Input) (*Document, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	cover, first, second, closing := in.Pages[0], in.Pages[1], in.Pages[2], in.Pages[3]

	coverRaster, err := a.rasterize(ctx, cover)
	if err != nil {
		return nil, err
	}
	if coverRaster.Width <= 0 || coverRaster.Height <= 0 {
		return nil, fmt.Errorf("%w: cover image has no size", ErrRasterize)
	}

	// every page takes the cover's aspect ratio at A4 width
	width := pageWidthMM
	height := float64(coverRaster.Height) * pageWidthMM / float64(coverRaster.Width)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	canvas := &pdfCanvas{pdf: pdf}

	emblemName := a.registerEmblem(pdf)
	plan := make([]PageInfo, 0, TotalPages(in.PassportType))

	addImagePage(pdf, "page-cover", coverRaster, width, height)
	plan = append(plan, PageInfo{Kind: PageCover})

	for i, page := range []layout.Page{first, second} {
		raster, err := a.rasterize(ctx, page)
		if err != nil {
			return nil, err
		}
		addImagePage(pdf, "page-details-"+strconv.Itoa(i+1), raster, width, height)
		plan = append(plan, PageInfo{Kind: PageDetails, Watermarked: ApplyWatermark(canvas, emblemName)})
	}

	for i := 0; i < FillerPages(in.PassportType); i++ {
		pdf.AddPage()
		watermarked, marks := PaintFiller(canvas, emblemName)
		plan = append(plan, PageInfo{Kind: PageFiller, Watermarked: watermarked, TitleMarks: marks})
	}

	closingRaster, err := a.rasterize(ctx, closing)
	if err != nil {
		return nil, err
	}
	addImagePage(pdf, "page-closing", closingRaster, width, height)
	plan = append(plan, PageInfo{Kind: PageClosing})

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to compose document: %w", err)
	}

	// footers go on last so every page shows the final total
	total := pdf.PageCount()
	for n := 1; n <= total; n++ {
		pdf.SetPage(n)
		ClearFooter(canvas)
		plan[n-1].Number = n
		plan[n-1].Footer = StampFooter(canvas, in.DocumentID, n, total)
	}

	if want := TotalPages(in.PassportType); total != want {
		return nil, fmt.Errorf("%w: composed %d pages, expected %d", ErrPageCountMismatch, total, want)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	if a.verify {
		if err := verifyPageCount(buf.Bytes(), total); err != nil {
			return nil, err
		}
	}

	return &Document{
		Filename: Filename(in.DocumentID),
		PDF:      buf.Bytes(),
		Width:    width,
		Height:   height,
		Pages:    plan,
	}, nil
}

func (a *Assembler) rasterize(ctx context.Context, page layout.Page) (*Raster, error) {
	ctx, span := tracing.StartSpan(ctx, "Assembler.Rasterize")
	defer span.End()
	span.SetAttributes(attribute.String("page.kind", string(page.Kind)))

	raster, err := a.rasterizer.Rasterize(ctx, page)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: %s page: %w", ErrRasterize, page.Kind, err)
	}
	return raster, nil
}

func (a *Assembler) registerEmblem(pdf *fpdf.Fpdf) string {
	if a.emblem == nil || len(a.emblem.PNG) == 0 {
		return ""
	}
	pdf.RegisterImageOptionsReader(emblemImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(a.emblem.PNG))
	return emblemImageName
}

func addImagePage(pdf *fpdf.Fpdf, name string, raster *Raster, width, height float64) {
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raster.PNG))
	pdf.ImageOptions(name, 0, 0, width, height, false, opts, 0, "")
}

func validate(in Input) error {
	if in.DocumentID == "" {
		return fmt.Errorf("%w: empty document id", ErrInvalidInput)
	}
	want := layout.Kinds
	if len(in.Pages) != len(want) {
		return fmt.Errorf("%w: got %d pages, expected %d", ErrInvalidInput, len(in.Pages), len(want))
	}
	for i, kind := range want {
		if in.Pages[i].Kind != kind {
			return fmt.Errorf("%w: page %d is %s, expected %s", ErrInvalidInput, i+1, in.Pages[i].Kind, kind)
		}
	}
	return nil
}
