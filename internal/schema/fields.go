// Package schema holds the static catalog of collectible report fields,
// the validation/normalization pipeline, and the alias matcher that maps
// free-text headers onto known fields and table sections.
package schema

import (
	"regexp"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// FieldDefinition describes one collectible field. Definitions are
// built once at process start and never mutated.
type FieldDefinition struct {
	Name       string
	Label      string
	Question   string
	HelpText   string
	Required   bool
	MinLength  int
	MaxLength  int
	MinWords   int
	Pattern    *regexp.Regexp
	PatternMsg string
	Check      func(string) bool
	CheckMsg   string
	Normalizer func(string) string
	Aliases    []string
}

// Registry is the immutable field catalog plus a precomputed alias
// index (normalized alias -> canonical field name).
type Registry struct {
	fields     map[string]*FieldDefinition
	order      []string // required interview sequence, in asking order
	aliasIndex map[string]string
}

// collapseWhitespace folds any whitespace run into a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func upperCollapsed(s string) string {
	return strings.ToUpper(collapseWhitespace(s))
}

// dateLayouts are the accepted test-date input forms.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2 January 2006", "02 Jan 2006", "Jan 2, 2006"}

// normalizeDate canonicalizes recognized date forms to YYYY-MM-DD and
// keeps anything else verbatim.
func normalizeDate(s string) string {
	s = collapseWhitespace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// NewRegistry builds the default field catalog for commissioning
// reports.
func NewRegistry() *Registry {
	defs := []*FieldDefinition{
		{
			Name:       "project_name",
			Label:      "Project name",
			Question:   "What is the project name?",
			HelpText:   "The official project title as it should appear on the report cover.",
			Required:   true,
			MinLength:  3,
			MaxLength:  120,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"project", "project title", "job name", "job", "contract name"},
		},
		{
			Name:       "client_name",
			Label:      "Client name",
			Question:   "Who is the client?",
			Required:   true,
			MinLength:  2,
			MaxLength:  120,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"client", "customer", "end user", "owner", "company"},
		},
		{
			Name:       "site_location",
			Label:      "Site location",
			Question:   "Where is the site located?",
			Required:   true,
			MinLength:  2,
			MaxLength:  160,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"site", "location", "plant", "facility", "site address", "plant location"},
		},
		{
			Name:       "system_name",
			Label:      "System under test",
			Question:   "Which system or equipment package is under test?",
			Required:   true,
			MinLength:  2,
			MaxLength:  160,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"system", "equipment", "unit", "package", "system under test", "equipment name"},
		},
		{
			Name:       "purpose",
			Label:      "Purpose",
			Question:   "What is the purpose of this test campaign?",
			HelpText:   "A few sentences on why the tests are being performed.",
			Required:   true,
			MinWords:   3,
			MaxLength:  1200,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"objective", "aim", "intent", "test purpose", "purpose of test"},
		},
		{
			Name:       "scope",
			Label:      "Scope",
			Question:   "What is the scope of the tests?",
			HelpText:   "Which systems, signals and functions are covered, and which are excluded.",
			Required:   true,
			MinWords:   3,
			MaxLength:  2000,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"scope of work", "scope of test", "extent", "test scope", "coverage"},
		},
		{
			Name:       "test_date",
			Label:      "Test date",
			Question:   "When were the tests performed?",
			HelpText:   "Any common date form works, e.g. 2026-03-14 or 14/03/2026.",
			Required:   true,
			Pattern:    regexp.MustCompile(`\d`),
			PatternMsg: "Test date must contain a date, e.g. 2026-03-14.",
			Normalizer: normalizeDate,
			Aliases:    []string{"date", "date of test", "commissioning date", "test dates", "date tested"},
		},
		{
			Name:       "engineer_name",
			Label:      "Engineer name",
			Question:   "Who performed the tests?",
			Required:   true,
			MinLength:  2,
			MaxLength:  120,
			Normalizer: collapseWhitespace,
			Aliases:    []string{"engineer", "tested by", "prepared by", "author", "technician", "performed by"},
		},
		{
			Name:       "document_number",
			Label:      "Document number",
			MaxLength:  40,
			Normalizer: upperCollapsed,
			Aliases:    []string{"doc no", "doc number", "document no", "report number", "report no", "doc ref"},
		},
		{
			Name:       "revision",
			Label:      "Revision",
			MaxLength:  10,
			Normalizer: upperCollapsed,
			Aliases:    []string{"rev", "version", "issue", "rev no"},
		},
		{
			Name:     "contact_email",
			Label:    "Contact email",
			Check:    govalidator.IsEmail,
			CheckMsg: "Contact email must be a valid email address.",
			Aliases:  []string{"email", "contact email", "client email", "e mail"},
		},
	}

	r := &Registry{
		fields:     make(map[string]*FieldDefinition, len(defs)),
		aliasIndex: make(map[string]string),
	}

	for _, def := range defs {
		r.fields[def.Name] = def
		if def.Required {
			r.order = append(r.order, def.Name)
		}
		r.aliasIndex[NormalizeText(def.Name)] = def.Name
		r.aliasIndex[NormalizeText(def.Label)] = def.Name
		for _, alias := range def.Aliases {
			r.aliasIndex[NormalizeText(alias)] = def.Name
		}
	}

	return r
}

// Field returns the definition for a field name.
func (r *Registry) Field(name string) (*FieldDefinition, bool) {
	def, ok := r.fields[name]
	return def, ok
}

// RequiredSequence returns the ordered interview field names.
func (r *Registry) RequiredSequence() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FieldNames returns every known field name.
func (r *Registry) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	return names
}
