package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status of an application or renewal
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusDeclined Status = "Declined"
)

// Kind is the logical table a record belongs to
type Kind string

const (
	KindApplications Kind = "applications"
	KindRenewals     Kind = "renewals"
)

// ErrUnknownKind is returned for a table name that is neither applications nor renewals
var ErrUnknownKind = errors.New("unknown record table")

// Kinds lists the logical tables in dashboard order.
var Kinds = []Kind{KindApplications, KindRenewals}

// ParseKind accepts the plural and singular spelling of a table.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "applications", "application":
		return KindApplications, nil
	case "renewals", "renewal":
		return KindRenewals, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// OrderColumn is the timestamp the table is listed by, newest first.
func (k Kind) OrderColumn() string {
	if k == KindRenewals {
		return "created_at"
	}
	return "submitted_at"
}

// ReferencePrefix is the prefix of the human readable reference.
func (k Kind) ReferencePrefix() string {
	if k == KindRenewals {
		return "RE-"
	}
	return "LS-"
}

// Tables maps logical kinds to physical table names.
type Tables struct {
	Applications string
	Renewals     string
}

func DefaultTables() Tables {
	return Tables{Applications: "passport_applications", Renewals: "renewals"}
}

func (t Tables) Name(k Kind) string {
	if k == KindRenewals {
		return t.Renewals
	}
	return t.Applications
}

// ID is a record identifier. The store may send it as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so clients see what the store sent.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Record is one application or renewal row. Applications use full_name and
// submitted_at; renewals use name, surname, passport_number and created_at.
type Record struct {
	ID             ID     `json:"id"`
	FullName       string `json:"full_name,omitempty"`
	Surname        string `json:"surname,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	IDNumber       string `json:"id_number,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	DOB            string `json:"dob,omitempty"`
	BirthPlace     string `json:"birth_place,omitempty"`
	District       string `json:"district,omitempty"`
	Sex            string `json:"sex,omitempty"`
	HeadChief      string `json:"head_chief,omitempty"`
	PassportType   string `json:"passport_type,omitempty"`
	PhotoURL       string `json:"photo_url,omitempty"`
	SignatureURL   string `json:"signature_url,omitempty"`
	DocsURL        string `json:"docs_url,omitempty"`
	GuardianName   string `json:"guardian_name,omitempty"`
	GuardianID     string `json:"guardian_id,omitempty"`
	Status         Status `json:"status,omitempty"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// EffectiveStatus reads a missing status as Pending.
func (r Record) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusPending
	}
	return r.Status
}

// Reference is LS-{id} for applications and RE-{id} for renewals.
func (r Record) Reference(k Kind) string {
	return k.ReferencePrefix() + string(r.ID)
}

// DocumentID identifies the generated passport; it is LS-{id} for both tables.
func (r Record) DocumentID() string {
	return "LS-" + string(r.ID)
}

// DisplayName prefers full_name and falls back to "name surname".
func (r Record) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return strings.TrimSpace(r.Name + " " + r.Surname)
}

// Submitted returns the table's ordering timestamp, if present and parseable.
func (r Record) Submitted(k Kind) (time.Time, bool) {
	raw := r.SubmittedAt
	if k == KindRenewals {
		raw = r.CreatedAt
	}
	return ParseTimestamp(raw)
}

// Patch is the partial update sent on approve/decline.
type Patch struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the formats PostgREST and Postgres emit.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
