package source

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Row is one delimited record keyed by header name, every field trimmed.
type Row map[string]string

// Rows parses a delimited payload: comma-separated, double-quote enclosed,
// doubled quotes escaping an embedded quote, CR/LF/CRLF record separators,
// blank lines ignored, first row the header.
func Rows(data []byte) ([]Row, error) {
	fields, err := Fields(data)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	header := fields[0]
	rows := make([]Row, 0, len(fields)-1)
	for _, rec := range fields[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Fields parses the raw delimited text into trimmed string matrices,
// header included.
func Fields(data []byte) ([][]string, error) {
	// encoding/csv accepts LF and CRLF; bare-CR sources need normalizing.
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // ragged rows are the normalizer's problem
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited data: %w", err)
	}

	var out [][]string
	for _, rec := range records {
		trimmed := make([]string, len(rec))
		blank := true
		for i, f := range rec {
			trimmed[i] = strings.TrimSpace(f)
			if trimmed[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		out = append(out, trimmed)
	}
	return out, nil
}
