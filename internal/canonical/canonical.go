package canonical

import "time"

// FieldType identifies the canonical type of a template field. Every provider
// maps its native type codes onto this set; anything unrecognized degrades to
// FieldRichText so a template is always renderable.
type FieldType string

const (
	FieldRichText    FieldType = "rich-text"
	FieldNumber      FieldType = "number"
	FieldDropdown    FieldType = "dropdown"
	FieldMultiSelect FieldType = "multi-select"
	FieldImage       FieldType = "image"
	FieldAttachment  FieldType = "attachment"
	FieldAddress     FieldType = "address"
	FieldDatetime    FieldType = "datetime"
	FieldUserPicker  FieldType = "user-picker"
)

// Option is a selectable choice for dropdown and multi-select fields.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Field is a single field definition inside a template. The ID is derived
// from the template ID and the field index, never from the label, since
// labels may repeat within a template.
type Field struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Type         FieldType `json:"type"`
	Placeholder  string    `json:"placeholder,omitempty"`
	Options      []Option  `json:"options,omitempty"`
	MaxCount     int       `json:"max_count,omitempty"`
	MaxSizeBytes int64     `json:"max_size_bytes,omitempty"`
}

// Template is the canonical report template: a named, ordered set of fields.
type Template struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// ReportField is one populated field of a submitted report.
type ReportField struct {
	Name  string    `json:"name"`
	Value string    `json:"value"`
	Type  FieldType `json:"type"`
}

// Report is a read-only snapshot of a submitted report. The title is composed
// at normalization time from provider metadata (template or rule name, author,
// formatted submission time).
type Report struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Fields []ReportField `json:"fields"`
}

// Filter narrows a report listing. Absent fields mean "no filter" on that
// dimension; adapters translate them to whatever the upstream expects.
type Filter struct {
	Template string
	Start    time.Time
	End      time.Time
	Cursor   int
	Size     int
}

// DraftField is one field of a report about to be submitted.
type DraftField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Draft is a report payload to submit to a provider that supports writes.
type Draft struct {
	TemplateID   string       `json:"template_id"`
	TemplateName string       `json:"template_name"`
	Fields       []DraftField `json:"contents"`
}

// SubmitResult is the confirmation returned by a successful submission.
type SubmitResult struct {
	ReportID string `json:"report_id"`
}

// Session is the authenticated state owned by the credential store. A present
// token implies User.Provider selects exactly one adapter.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      User   `json:"user"`
}

// User identifies the logged-in account and the provider it came from.
type User struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	DisplayName string `json:"display_name"`
}
