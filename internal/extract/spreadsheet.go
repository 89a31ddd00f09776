// internal/extract/spreadsheet.go
package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// maxConsecutiveBlankRows terminates a sheet scan early so a stray cell
// thousands of rows down cannot stall ingestion.
const maxConsecutiveBlankRows = 20

// extractSpreadsheet handles workbook uploads through the optional
// SpreadsheetReader capability.
func (d *Dispatcher) extractSpreadsheet(data []byte, filename string, result *Result) {
	if d.spreadsheet == nil {
		result.AddWarning("spreadsheet support is not available, %s was not processed", filename)
		return
	}

	sheets, err := d.spreadsheet.ReadSheets(data)
	if err != nil {
		result.AddWarning("could not open %s as a workbook: %v", filename, err)
		return
	}

	for _, sheet := range sheets {
		d.processSheet(sheet, result)
	}

	if result.HasUpdates() {
		result.AddMessage("extracted data from %s", filename)
	} else {
		result.AddWarning("no recognizable columns found in %s", filename)
	}
}

// processSheet finds the header row (first row with at least two
// non-empty cells) and feeds the remaining rows through the shared
// table pipeline, stopping after too many consecutive blank rows.
func (d *Dispatcher) processSheet(sheet Sheet, result *Result) {
	var headers []string
	var rows [][]string
	blankRun := 0

	for _, row := range sheet.Rows {
		if isBlankRow(row) {
			blankRun++
			if blankRun >= maxConsecutiveBlankRows {
				break
			}
			continue
		}
		blankRun = 0

		if headers == nil {
			if countNonEmpty(row) >= 2 {
				headers = row
			}
			continue
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return
	}
	d.processTable(headers, rows, result)
}

func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if cell != "" {
			n++
		}
	}
	return n
}

// ExcelReader reads .xlsx/.xlsm workbooks. It satisfies the
// SpreadsheetReader capability.
type ExcelReader struct{}

func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

func (r *ExcelReader) ReadSheets(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}
