// Package extract turns uploaded evidence files into raw field and
// table updates. Extractors never fail hard: every problem degrades to
// a warning on the result and processing continues with whatever was
// recovered.
package extract

import "fmt"

// Result is the output of any extractor. It is produced per upload,
// merged into conversation state, then discarded.
type Result struct {
	// FieldUpdates holds raw values keyed by canonical field name. The
	// engine re-validates every entry before accepting it.
	FieldUpdates map[string]string
	// TableUpdates holds ordered rows keyed by section name.
	TableUpdates map[string][]map[string]string
	Messages     []string
	Warnings     []string

	// Digest is the SHA-256 of the file content, used for duplicate
	// detection across a session.
	Digest string
	// Metadata carries extraction details persisted alongside the digest.
	Metadata map[string]interface{}
}

func NewResult() *Result {
	return &Result{
		FieldUpdates: make(map[string]string),
		TableUpdates: make(map[string][]map[string]string),
		Metadata:     make(map[string]interface{}),
	}
}

func (r *Result) AddMessage(format string, args ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *Result) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SetField records a discovered value. The first value seen for a field
// wins; a later different value is reported as a warning and dropped.
func (r *Result) SetField(field, value string) {
	if value == "" {
		return
	}
	if existing, ok := r.FieldUpdates[field]; ok {
		if existing != value {
			r.AddWarning("duplicate value for %s ignored (keeping first value seen)", field)
		}
		return
	}
	r.FieldUpdates[field] = value
}

// AddRow appends one table row to a section.
func (r *Result) AddRow(section string, row map[string]string) {
	r.TableUpdates[section] = append(r.TableUpdates[section], row)
}

// HasUpdates reports whether anything usable was extracted.
func (r *Result) HasUpdates() bool {
	return len(r.FieldUpdates) > 0 || len(r.TableUpdates) > 0
}
