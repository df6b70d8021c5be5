package layout

import (
	"strings"
	"time"

	"passport-admin-go/internal/domain/record"
)

const (
	DefaultSex           = "Not specified"
	DefaultNationality   = "Mosotho"
	SignaturePlaceholder = "Signature will appear here"
	Authority            = "Government of Lesotho"
	IssuingMinistry      = "Ministry of Home Affairs"

	blankLine     = "_________________________"
	dateLayout    = "1/2/2006"
	validityYears = 10
)

var notices = []string{
	"This passport is the property of the Government of Lesotho",
	"It must be surrendered upon demand by authorized officials",
	"Report loss or theft immediately to local authorities",
	"Keep your passport in a secure place at all times",
}

// Resolver looks up a locally cached image handle for a remote URL.
type Resolver interface {
	Lookup(url string) (string, bool)
}

// Builder produces page descriptors from a record. It performs no I/O.
type Builder struct {
	now       func() time.Time
	emblemSrc string
}

type BuilderOption func(*Builder)

// WithClock overrides the clock used for issue, expiry and print dates.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// WithEmblem sets the background coat of arms image source.
func WithEmblem(src string) BuilderOption {
	return func(b *Builder) {
		b.emblemSrc = src
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pages returns cover, first details, second details and closing page.
func (b *Builder) Pages(rec record.Record, images Resolver) []Page {
	pages := make([]Page, 0, len(Kinds))
	for _, k := range Kinds {
		pages = append(pages, b.Build(rec, k, images))
	}
	return pages
}

func (b *Builder) Build(rec record.Record, kind PageKind, images Resolver) Page {
	switch kind {
	case KindCover:
		return b.cover()
	case KindFirstDetails:
		return b.firstDetails(rec, images)
	case KindSecondDetails:
		return b.secondDetails(rec)
	default:
		return b.closing(rec)
	}
}

func (b *Builder) cover() Page {
	return Page{
		Kind:          KindCover,
		Background:    BackgroundDark,
		Seal:          []string{"KINGDOM", "OF", "LESOTHO"},
		Headline:      []string{"KINGDOM OF LESOTHO", "PASSPORT", "Official Document"},
		EmblemSrc:     b.emblemSrc,
		EmblemOpacity: 0.2,
	}
}

func (b *Builder) firstDetails(rec record.Record, images Resolver) Page {
	p := Page{
		Kind:       KindFirstDetails,
		Background: BackgroundLight,
		Sections: []Section{{
			Heading: "PERSONAL DETAILS",
			Fields: []Field{
				{"Surname", surname(rec)},
				{"Given Names", givenNames(rec)},
				{"Nationality", orDefault(rec.Nationality, DefaultNationality)},
				{"Date of Birth", rec.DOB},
				{"Place of Birth", rec.BirthPlace},
				{"Sex", orDefault(rec.Sex, DefaultSex)},
				{"ID Number", rec.IDNumber},
				{"District", rec.District},
			},
		}},
		PhotoSrc:      resolve(images, rec.PhotoURL),
		SignatureSrc:  resolve(images, rec.SignatureURL),
		EmblemSrc:     b.emblemSrc,
		EmblemOpacity: 0.1,
	}
	if p.SignatureSrc == "" {
		p.SignaturePlaceholder = SignaturePlaceholder
	}
	return p
}

func (b *Builder) secondDetails(rec record.Record) Page {
	issued := b.now()
	p := Page{
		Kind:       KindSecondDetails,
		Background: BackgroundLight,
		Sections: []Section{{
			Heading: "ADDITIONAL INFORMATION",
			Fields: []Field{
				{"Passport Type", rec.PassportType},
				{"Passport No", rec.DocumentID()},
				{"Date of Issue", issued.Format(dateLayout)},
				{"Date of Expiry", issued.AddDate(validityYears, 0, 0).Format(dateLayout)},
				{"Authority", Authority},
			},
		}},
		EmblemSrc:     b.emblemSrc,
		EmblemOpacity: 0.1,
	}

	if rec.GuardianName != "" || rec.GuardianID != "" {
		p.Sections = append(p.Sections, Section{
			Heading: "GUARDIAN INFORMATION",
			Fields: []Field{
				{"Guardian Name", rec.GuardianName},
				{"Guardian ID", rec.GuardianID},
			},
		})
	}

	p.Sections = append(p.Sections, Section{
		Heading: "EMERGENCY CONTACT",
		Fields: []Field{
			{"Contact Person", blankLine},
			{"Phone Number", blankLine},
			{"Relationship", blankLine},
		},
	})
	return p
}

func (b *Builder) closing(rec record.Record) Page {
	today := b.now().Format(dateLayout)
	return Page{
		Kind:          KindClosing,
		Background:    BackgroundDark,
		Headline:      []string{"IMPORTANT NOTICE"},
		Notices:       append([]string(nil), notices...),
		Issuer:        []string{"Issued by:", IssuingMinistry, "Kingdom of Lesotho", today},
		Footnote:      rec.DocumentID() + " | Printed on: " + today,
		EmblemSrc:     b.emblemSrc,
		EmblemOpacity: 0.2,
	}
}

func surname(rec record.Record) string {
	if rec.Surname != "" {
		return rec.Surname
	}
	if fields := strings.Fields(rec.FullName); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func givenNames(rec record.Record) string {
	if rec.FullName != "" {
		return rec.FullName
	}
	return rec.Name
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// resolve prefers the cached handle and falls back to the remote URL.
func resolve(images Resolver, url string) string {
	if url == "" {
		return ""
	}
	if images != nil {
		if handle, ok := images.Lookup(url); ok {
			return handle
		}
	}
	return url
}
