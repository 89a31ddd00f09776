// internal/schema/alias.go
package schema

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// matchThreshold is the minimum similarity for a header to count as a
// section column.
const matchThreshold = 0.58

// NormalizeText lower-cases, strips non-alphanumeric runes to spaces
// and collapses whitespace. All alias comparison happens on this form.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// similarity scores two normalized strings: 1.0 exact, 0.9 substring
// containment either way, else a sequence-similarity ratio in [0,1].
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ColumnMatch binds one table header to a section field.
type ColumnMatch struct {
	Field      string
	Confidence float64
}

// SectionMatch is the result of classifying a header row.
type SectionMatch struct {
	Section string
	// Columns maps the original header text to its matched field.
	Columns map[string]ColumnMatch
}

// Matcher resolves free-text headers to fields and header rows to table
// sections. Read-only after construction, safe for concurrent use.
type Matcher struct {
	registry *Registry
	sections []SectionSchema
}

func NewMatcher(registry *Registry, sections []SectionSchema) *Matcher {
	return &Matcher{registry: registry, sections: sections}
}

// MatchField maps an arbitrary header or phrase to a known field name.
// Only an exact normalized match against name, label or alias counts;
// fuzzy scoring is reserved for section classification.
func (m *Matcher) MatchField(headerText string) (string, bool) {
	name, ok := m.registry.aliasIndex[NormalizeText(headerText)]
	return name, ok
}

type sectionCandidate struct {
	match    *SectionMatch
	distinct int
	coverage float64
	avgScore float64
}

// MatchSection classifies a table's header row against the known
// section schemas. A section is accepted only when enough distinct
// fields match; ties break on more distinct fields, then coverage,
// then average confidence.
func (m *Matcher) MatchSection(headers []string) (*SectionMatch, bool) {
	var best *sectionCandidate

	for _, section := range m.sections {
		cand := m.scoreSection(section, headers)
		if cand == nil {
			continue
		}
		if best == nil || better(cand, best) {
			best = cand
		}
	}

	if best == nil {
		return nil, false
	}
	return best.match, true
}

func better(a, b *sectionCandidate) bool {
	if a.distinct != b.distinct {
		return a.distinct > b.distinct
	}
	if a.coverage != b.coverage {
		return a.coverage > b.coverage
	}
	return a.avgScore > b.avgScore
}

func (m *Matcher) scoreSection(section SectionSchema, headers []string) *sectionCandidate {
	columns := make(map[string]ColumnMatch)
	seen := make(map[string]bool)
	var total float64

	for _, header := range headers {
		norm := NormalizeText(header)
		if norm == "" {
			continue
		}

		bestField := ""
		bestScore := 0.0
		for _, field := range section.Fields {
			score := bestAliasScore(norm, field)
			if score > bestScore {
				bestScore = score
				bestField = field.Name
			}
		}

		if bestField != "" && bestScore >= matchThreshold {
			columns[header] = ColumnMatch{Field: bestField, Confidence: bestScore}
			seen[bestField] = true
			total += bestScore
		}
	}

	if len(seen) < section.MinRequiredFields() {
		return nil
	}

	return &sectionCandidate{
		match:    &SectionMatch{Section: section.Name, Columns: columns},
		distinct: len(seen),
		coverage: float64(len(seen)) / float64(len(section.Fields)),
		avgScore: total / float64(len(columns)),
	}
}

// bestAliasScore scores a normalized header against a section field's
// name and every alias, keeping the best.
func bestAliasScore(normHeader string, field SectionField) float64 {
	best := similarity(normHeader, NormalizeText(field.Name))
	for _, alias := range field.Aliases {
		if score := similarity(normHeader, NormalizeText(alias)); score > best {
			best = score
		}
	}
	return best
}
