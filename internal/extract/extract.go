// internal/extract/extract.go
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"report-intake/internal/common/logger"
	"report-intake/internal/common/metrics"
	"report-intake/internal/schema"
)

// Sheet is one worksheet worth of raw cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// SpreadsheetReader is the optional capability to read workbook files.
// When absent, spreadsheet uploads degrade to a descriptive warning.
type SpreadsheetReader interface {
	ReadSheets(data []byte) ([]Sheet, error)
}

// DocumentTextExtractor is the optional capability to pull plain text
// out of a binary document format (PDF, DOCX).
type DocumentTextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Dispatcher routes an upload to the extractor for its file class.
type Dispatcher struct {
	matcher     *schema.Matcher
	spreadsheet SpreadsheetReader
	pdf         DocumentTextExtractor
	docx        DocumentTextExtractor
	logger      logger.Logger
}

// Option configures optional capabilities on the dispatcher.
type Option func(*Dispatcher)

func WithSpreadsheetReader(r SpreadsheetReader) Option {
	return func(d *Dispatcher) { d.spreadsheet = r }
}

func WithPDFExtractor(e DocumentTextExtractor) Option {
	return func(d *Dispatcher) { d.pdf = e }
}

func WithDocxExtractor(e DocumentTextExtractor) Option {
	return func(d *Dispatcher) { d.docx = e }
}

func NewDispatcher(matcher *schema.Matcher, log logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		matcher: matcher,
		logger:  log.With(map[string]interface{}{"component": "extract"}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Extract processes one upload and never fails: unsupported or broken
// input yields a result whose warnings explain what happened.
func (d *Dispatcher) Extract(data []byte, filename string) *Result {
	result := NewResult()

	digest := sha256.Sum256(data)
	result.Digest = hex.EncodeToString(digest[:])
	result.Metadata["filename"] = filename
	result.Metadata["bytes"] = len(data)

	if len(data) == 0 {
		result.AddWarning("%s is empty, nothing to extract", filename)
		metrics.ExtractionWarnings.WithLabelValues("empty_payload").Inc()
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ext == ".csv" || ext == ".tsv":
		metrics.FilesIngested.WithLabelValues("delimited").Inc()
		d.extractDelimited(data, filename, ext, result)
	case ext == ".xlsx" || ext == ".xlsm" || ext == ".xls":
		metrics.FilesIngested.WithLabelValues("spreadsheet").Inc()
		d.extractSpreadsheet(data, filename, result)
	case ext == ".txt" || ext == ".md":
		metrics.FilesIngested.WithLabelValues("freetext").Inc()
		d.extractFreeText(string(data), filename, result)
	case ext == ".pdf":
		metrics.FilesIngested.WithLabelValues("freetext").Inc()
		d.extractBinaryDocument(data, filename, d.pdf, "PDF", result)
	case ext == ".docx":
		metrics.FilesIngested.WithLabelValues("freetext").Inc()
		d.extractBinaryDocument(data, filename, d.docx, "Word", result)
	case imageExtensions[ext]:
		metrics.FilesIngested.WithLabelValues("image").Inc()
		d.extractImage(data, filename, result)
	default:
		metrics.FilesIngested.WithLabelValues("unknown").Inc()
		result.AddWarning("unsupported file type %q for %s, file ignored", ext, filename)
	}

	for range result.Warnings {
		metrics.ExtractionWarnings.WithLabelValues("extract").Inc()
	}

	d.logger.Info("extraction finished", map[string]interface{}{
		"filename": filename,
		"fields":   len(result.FieldUpdates),
		"sections": len(result.TableUpdates),
		"warnings": len(result.Warnings),
	})

	return result
}

// processTable applies a header row and its data rows to the result:
// headers that exactly match a known field fill fields directly, and
// independently the header row is classified against the table section
// schemas to fill rows.
func (d *Dispatcher) processTable(headers []string, rows [][]string, result *Result) {
	fieldColumns := make(map[int]string)
	for i, header := range headers {
		if name, ok := d.matcher.MatchField(header); ok {
			fieldColumns[i] = name
		}
	}

	sectionMatch, sectionOK := d.matcher.MatchSection(headers)

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}

		for i, field := range fieldColumns {
			if i < len(row) {
				result.SetField(field, strings.TrimSpace(row[i]))
			}
		}

		if sectionOK {
			tableRow := make(map[string]string)
			for i, header := range headers {
				col, ok := sectionMatch.Columns[header]
				if !ok || i >= len(row) {
					continue
				}
				if cell := strings.TrimSpace(row[i]); cell != "" {
					tableRow[col.Field] = cell
				}
			}
			if len(tableRow) > 0 {
				result.AddRow(sectionMatch.Section, tableRow)
			}
		}
	}

	if sectionOK {
		if rows := result.TableUpdates[sectionMatch.Section]; len(rows) > 0 {
			result.AddMessage("recognized %s table with %d rows", sectionMatch.Section, len(rows))
		}
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
