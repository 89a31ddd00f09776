// internal/extract/delimited.go
package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// extractDelimited handles .csv and .tsv uploads. The first record is
// treated as the header row; the delimiter for .csv files is sniffed
// from the header line since exports labeled .csv are sometimes
// tab-separated.
func (d *Dispatcher) extractDelimited(data []byte, filename, ext string, result *Result) {
	delimiter := ','
	if ext == ".tsv" {
		delimiter = '\t'
	} else {
		delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		result.AddWarning("could not read header row from %s: %v", filename, err)
		return
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.AddWarning("stopped reading %s early: %v", filename, err)
			break
		}
		rows = append(rows, record)
	}

	d.processTable(headers, rows, result)

	if result.HasUpdates() {
		result.AddMessage("extracted data from %s", filename)
	} else {
		result.AddWarning("no recognizable columns found in %s", filename)
	}
}

// sniffDelimiter picks tab over comma when the first line carries more
// tabs than commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if strings.Count(string(line), "\t") > strings.Count(string(line), ",") {
		return '\t'
	}
	return ','
}
