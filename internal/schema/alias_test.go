// internal/schema/alias_test.go
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Signal TAG", "signal tag"},
		{"  Project_Name!!", "project name"},
		{"E-Mail (Contact)", "e mail contact"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeText(tt.input), "input %q", tt.input)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("signal tag", "signal tag"))
	assert.Equal(t, 0.9, similarity("signal tag no", "signal tag"))
	assert.Equal(t, 0.9, similarity("tag", "signal tag"))

	ratio := similarity("resalt", "result")
	assert.Greater(t, ratio, 0.58)
	assert.Less(t, ratio, 0.9)

	assert.Less(t, similarity("manufacturer", "setpoint"), 0.58)
}

func newTestMatcher() *Matcher {
	return NewMatcher(NewRegistry(), DefaultSections())
}

func TestMatchField_ExactNormalizedOnly(t *testing.T) {
	matcher := newTestMatcher()

	tests := []struct {
		header   string
		expected string
		found    bool
	}{
		{"Project Name", "project_name", true},
		{"project", "project_name", true},
		{"CLIENT", "client_name", true},
		{"Tested By", "engineer_name", true},
		{"Doc No.", "document_number", true},
		{"E mail", "contact_email", true},
		{"projct nme", "", false}, // fuzzy is reserved for sections
		{"quantity", "", false},
	}

	for _, tt := range tests {
		name, ok := matcher.MatchField(tt.header)
		assert.Equal(t, tt.found, ok, "header %q", tt.header)
		if tt.found {
			assert.Equal(t, tt.expected, name, "header %q", tt.header)
		}
	}
}

func TestMatchSection_DigitalSignals(t *testing.T) {
	matcher := newTestMatcher()

	match, ok := matcher.MatchSection([]string{"Signal TAG", "Description", "Result"})
	require.True(t, ok)
	assert.Equal(t, SectionDigitalSignals, match.Section)

	assert.Equal(t, "Signal_TAG", match.Columns["Signal TAG"].Field)
	assert.Equal(t, "Description", match.Columns["Description"].Field)
	assert.Equal(t, "Result", match.Columns["Result"].Field)
}

func TestMatchSection_AnalogWinsWithRangeAndUnits(t *testing.T) {
	matcher := newTestMatcher()

	match, ok := matcher.MatchSection([]string{"AI Tag", "Description", "Range", "Units", "Result"})
	require.True(t, ok)
	assert.Equal(t, SectionAnalogSignals, match.Section)
}

func TestMatchSection_Equipment(t *testing.T) {
	matcher := newTestMatcher()

	match, ok := matcher.MatchSection([]string{"Tag Number", "Manufacturer", "Model", "Serial Number"})
	require.True(t, ok)
	assert.Equal(t, SectionEquipment, match.Section)
}

func TestMatchSection_RejectsSingleCoincidentalMatch(t *testing.T) {
	matcher := newTestMatcher()

	// One matching header must not classify an unrelated table when the
	// section needs two distinct fields.
	_, ok := matcher.MatchSection([]string{"Result", "Quantity", "Price"})
	assert.False(t, ok)
}

func TestMatchSection_NoHeaders(t *testing.T) {
	matcher := newTestMatcher()

	_, ok := matcher.MatchSection(nil)
	assert.False(t, ok)

	_, ok = matcher.MatchSection([]string{"", "  "})
	assert.False(t, ok)
}

func TestMatchSection_TieBreakPrefersCoverage(t *testing.T) {
	matcher := newTestMatcher()

	// These three headers match both signal sections with the same
	// distinct count; the digital schema has full coverage and must win.
	match, ok := matcher.MatchSection([]string{"Signal TAG", "Description", "Result"})
	require.True(t, ok)
	assert.Equal(t, SectionDigitalSignals, match.Section)
}
