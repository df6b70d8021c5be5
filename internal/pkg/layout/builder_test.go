package layout

import (
	"testing"
	"time"

	"passport-admin-go/internal/domain/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]string

func (m mapResolver) Lookup(url string) (string, bool) {
	v, ok := m[url]
	return v, ok
}

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestBuilder() *Builder {
	return NewBuilder(
		WithClock(func() time.Time { return fixedNow }),
		WithEmblem("data:image/png;base64,RU1CTEVN"),
	)
}

func TestBuilder_PagesOrder(t *testing.T) {
	pages := newTestBuilder().Pages(record.Record{ID: "9"}, nil)
	require.Len(t, pages, 4)
	assert.Equal(t, KindCover, pages[0].Kind)
	assert.Equal(t, KindFirstDetails, pages[1].Kind)
	assert.Equal(t, KindSecondDetails, pages[2].Kind)
	assert.Equal(t, KindClosing, pages[3].Kind)
}

func TestBuilder_Cover(t *testing.T) {
	p := newTestBuilder().Build(record.Record{ID: "9"}, KindCover, nil)
	assert.Equal(t, BackgroundDark, p.Background)
	assert.Equal(t, []string{"KINGDOM OF LESOTHO", "PASSPORT", "Official Document"}, p.Headline)
	assert.Equal(t, 0.2, p.EmblemOpacity)
}

func TestBuilder_FirstDetailsDefaults(t *testing.T) {
	rec := record.Record{ID: "7", FullName: "Palesa Mohapi Ntsane"}
	p := newTestBuilder().Build(rec, KindFirstDetails, nil)

	tests := map[string]string{
		"Surname":     "Palesa",
		"Given Names": "Palesa Mohapi Ntsane",
		"Nationality": DefaultNationality,
		"Sex":         DefaultSex,
	}
	for label, want := range tests {
		got, ok := p.Field(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	assert.False(t, p.HasPhoto())
	assert.Empty(t, p.SignatureSrc)
	assert.Equal(t, SignaturePlaceholder, p.SignaturePlaceholder)
}

func TestBuilder_FirstDetailsExplicitValues(t *testing.T) {
	rec := record.Record{
		ID:          "7",
		FullName:    "Palesa Ntsane",
		Surname:     "Ntsane",
		Nationality: "South African",
		Sex:         "Female",
		DOB:         "1990-05-01",
		BirthPlace:  "Maseru",
		IDNumber:    "0501901234",
		District:    "Berea",
		HeadChief:   "Chief Mokhehle",
	}
	p := newTestBuilder().Build(rec, KindFirstDetails, nil)

	surname, _ := p.Field("Surname")
	assert.Equal(t, "Ntsane", surname)
	nationality, _ := p.Field("Nationality")
	assert.Equal(t, "South African", nationality)
	district, _ := p.Field("District")
	assert.Equal(t, "Berea", district)

	_, ok := p.Field("Head Chief")
	assert.False(t, ok, "head chief is not printed")
}

func TestBuilder_ImageResolution(t *testing.T) {
	rec := record.Record{
		ID:           "7",
		PhotoURL:     "https://store.example/photo.jpg",
		SignatureURL: "https://store.example/sig.png",
	}

	t.Run("cached handle wins", func(t *testing.T) {
		images := mapResolver{rec.PhotoURL: "data:image/jpeg;base64,UEhPVE8="}
		p := newTestBuilder().Build(rec, KindFirstDetails, images)
		assert.Equal(t, "data:image/jpeg;base64,UEhPVE8=", p.PhotoSrc)
		assert.Equal(t, rec.SignatureURL, p.SignatureSrc, "uncached image falls back to its url")
		assert.Empty(t, p.SignaturePlaceholder)
	})

	t.Run("no resolver uses urls", func(t *testing.T) {
		p := newTestBuilder().Build(rec, KindFirstDetails, nil)
		assert.Equal(t, rec.PhotoURL, p.PhotoSrc)
	})
}

func TestBuilder_SecondDetails(t *testing.T) {
	rec := record.Record{ID: "31", PassportType: "64 pages"}
	p := newTestBuilder().Build(rec, KindSecondDetails, nil)

	passportNo, _ := p.Field("Passport No")
	assert.Equal(t, "LS-31", passportNo)
	issued, _ := p.Field("Date of Issue")
	assert.Equal(t, "3/14/2025", issued)
	expiry, _ := p.Field("Date of Expiry")
	assert.Equal(t, "3/14/2035", expiry)
	authority, _ := p.Field("Authority")
	assert.Equal(t, Authority, authority)

	_, ok := p.Section("GUARDIAN INFORMATION")
	assert.False(t, ok)
	emergency, ok := p.Section("EMERGENCY CONTACT")
	require.True(t, ok)
	assert.Len(t, emergency.Fields, 3)

	withGuardian := newTestBuilder().Build(record.Record{ID: "31", GuardianID: "G-1"}, KindSecondDetails, nil)
	guardian, ok := withGuardian.Section("GUARDIAN INFORMATION")
	require.True(t, ok)
	assert.Equal(t, "G-1", guardian.Fields[1].Value)
}

func TestBuilder_Closing(t *testing.T) {
	p := newTestBuilder().Build(record.Record{ID: "5"}, KindClosing, nil)
	assert.Len(t, p.Notices, 4)
	assert.Contains(t, p.Issuer, IssuingMinistry)
	assert.Equal(t, "LS-5 | Printed on: 3/14/2025", p.Footnote)
}

func TestBuilder_IsPure(t *testing.T) {
	b := newTestBuilder()
	rec := record.Record{ID: "5", FullName: "A B", GuardianName: "C"}
	assert.Equal(t, b.Pages(rec, nil), b.Pages(rec, nil))
}
