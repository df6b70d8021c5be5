package passport

import (
	"errors"
	"time"

	"passport-admin-go/internal/domain/record"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownTable   = errors.New("unknown table")
	ErrNoDocuments    = errors.New("record has no supporting documents")
)

// Row is one dashboard line.
type Row struct {
	Table     record.Kind   `json:"table"`
	Reference string        `json:"reference"`
	Name      string        `json:"name"`
	Status    record.Status `json:"status"`
	Submitted string        `json:"submitted"`
	Record    record.Record `json:"record"`
}

type Dashboard struct {
	Applications []Row     `json:"applications"`
	Renewals     []Row     `json:"renewals"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Details is the record opened for review, with image sources already resolved
// through the image cache.
type Details struct {
	Table        record.Kind   `json:"table"`
	Reference    string        `json:"reference"`
	DocumentID   string        `json:"document_id"`
	Status       record.Status `json:"status"`
	Record       record.Record `json:"record"`
	PhotoSrc     string        `json:"photo_src,omitempty"`
	SignatureSrc string        `json:"signature_src,omitempty"`
	HasDocuments bool          `json:"has_documents"`
}

// Download is a file handed back to the operator.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

const dateLayout = "1/2/2006"

func newRow(kind record.Kind, rec record.Record) Row {
	submitted := "—"
	if t, ok := rec.Submitted(kind); ok {
		submitted = t.Format(dateLayout)
	}
	return Row{
		Table:     kind,
		Reference: rec.Reference(kind),
		Name:      rec.DisplayName(),
		Status:    rec.EffectiveStatus(),
		Submitted: submitted,
		Record:    rec,
	}
}

func newRows(kind record.Kind, recs []record.Record) []Row {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, newRow(kind, rec))
	}
	return rows
}
