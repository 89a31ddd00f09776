// internal/extract/delimited_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-intake/internal/schema"
)

func newTestDispatcher(opts ...Option) *Dispatcher {
	registry := schema.NewRegistry()
	matcher := schema.NewMatcher(registry, schema.DefaultSections())
	return NewDispatcher(matcher, nil, opts...)
}

func TestExtract_CSVDigitalSignals(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Signal TAG,Description,Result\nPMP-101,Start command acknowledged,PASS\n")
	result := d.Extract(data, "signals.csv")

	require.Contains(t, result.TableUpdates, schema.SectionDigitalSignals)
	rows := result.TableUpdates[schema.SectionDigitalSignals]
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{
		"Signal_TAG":  "PMP-101",
		"Description": "Start command acknowledged",
		"Result":      "PASS",
	}, rows[0])
}

func TestExtract_CSVDirectFields(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Project,Client,Date\nAlpha WTP Upgrade,Acme Water,14/03/2026\n")
	result := d.Extract(data, "header.csv")

	assert.Equal(t, "Alpha WTP Upgrade", result.FieldUpdates["project_name"])
	assert.Equal(t, "Acme Water", result.FieldUpdates["client_name"])
	assert.Equal(t, "14/03/2026", result.FieldUpdates["test_date"])
}

func TestExtract_TSV(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Alarm Tag\tSetpoint\tResult\nLAH-201\t85%\tPASS\n")
	result := d.Extract(data, "alarms.tsv")

	require.Contains(t, result.TableUpdates, schema.SectionAlarms)
	rows := result.TableUpdates[schema.SectionAlarms]
	require.Len(t, rows, 1)
	assert.Equal(t, "LAH-201", rows[0]["Alarm_TAG"])
}

func TestExtract_CSVWithTabsSniffed(t *testing.T) {
	d := newTestDispatcher()

	// Mislabeled export: .csv extension, tab-delimited content.
	data := []byte("Signal TAG\tDescription\tResult\nVLV-001\tOpen command\tPASS\n")
	result := d.Extract(data, "export.csv")

	require.Contains(t, result.TableUpdates, schema.SectionDigitalSignals)
}

func TestExtract_CSVSkipsBlankRows(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Signal TAG,Description,Result\n,,\nPMP-101,Run feedback,PASS\n,,\n")
	result := d.Extract(data, "signals.csv")

	require.Contains(t, result.TableUpdates, schema.SectionDigitalSignals)
	assert.Len(t, result.TableUpdates[schema.SectionDigitalSignals], 1)
}

func TestExtract_DuplicateFieldKeepsFirst(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Project\nAlpha WTP Upgrade\nBeta Plant Refit\n")
	result := d.Extract(data, "projects.csv")

	assert.Equal(t, "Alpha WTP Upgrade", result.FieldUpdates["project_name"])
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "duplicate value")
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	d := newTestDispatcher()

	result := d.Extract([]byte("whatever"), "archive.rar")

	assert.False(t, result.HasUpdates())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unsupported file type")
}

func TestExtract_EmptyPayload(t *testing.T) {
	d := newTestDispatcher()

	result := d.Extract(nil, "empty.csv")

	assert.False(t, result.HasUpdates())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "empty")
}

func TestExtract_DigestIsStable(t *testing.T) {
	d := newTestDispatcher()

	data := []byte("Project\nAlpha WTP Upgrade\n")
	first := d.Extract(data, "a.csv")
	second := d.Extract(data, "b.csv")

	assert.NotEmpty(t, first.Digest)
	assert.Equal(t, first.Digest, second.Digest)
}
