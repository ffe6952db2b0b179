package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mining-pnl/internal/model"
)

// LoadReferenceTable reads a miner reference sheet from a CSV file.
func LoadReferenceTable(path string) (*model.ReferenceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table: %w", err)
	}
	defer f.Close()
	return ParseReferenceTable(f, filepath.Base(path))
}

// ParseReferenceTable reads a CSV stream. The first record is the header.
// Blank lines are skipped; short rows are padded so column lookups never
// index past the end of a row.
func ParseReferenceTable(r io.Reader, source string) (*model.ReferenceTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &model.SchemaError{Source: source, Reason: "empty reference table"}
		}
		return nil, fmt.Errorf("failed to read csv header of %s: %w", source, err)
	}
	for i, h := range header {
		// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &model.ReferenceTable{Source: source, Header: header}
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		if isBlank(rec) {
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ResolvePath interprets a relative reference path against baseDir first and
// falls back to the path as given (relative to cwd) if that doesn't exist.
func ResolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	cand := filepath.Join(baseDir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
