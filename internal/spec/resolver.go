package spec

import (
	"math"
	"strconv"
	"strings"

	"mining-pnl/internal/model"
)

// Resolve looks up modelName in t and returns its spec. Names match after
// trimming and case-folding; the first matching row wins.
func Resolve(t *model.ReferenceTable, modelName string) (model.MinerSpec, error) {
	cols, err := MapColumns(t.Header, t.Source)
	if err != nil {
		return model.MinerSpec{}, err
	}
	return ResolveWith(t, cols, modelName)
}

// ResolveWith is Resolve with a precomputed mapping.
func ResolveWith(t *model.ReferenceTable, cols ColumnMapping, modelName string) (model.MinerSpec, error) {
	want := foldName(modelName)
	for _, row := range t.Rows {
		if foldName(cell(row, cols.Model)) != want {
			continue
		}
		return ParseRow(t.Source, cols, row)
	}
	return model.MinerSpec{}, &model.SpecNotFoundError{
		Model:     modelName,
		Source:    t.Source,
		Available: modelNames(t, cols),
	}
}

// ListModels resolves every row of t, in table order.
func ListModels(t *model.ReferenceTable) ([]model.MinerSpec, error) {
	cols, err := MapColumns(t.Header, t.Source)
	if err != nil {
		return nil, err
	}
	out := make([]model.MinerSpec, 0, len(t.Rows))
	for _, row := range t.Rows {
		s, err := ParseRow(t.Source, cols, row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseRow reads one table row through cols.
func ParseRow(source string, cols ColumnMapping, row []string) (model.MinerSpec, error) {
	name := strings.TrimSpace(cell(row, cols.Model))
	hash, err := parseNumber(cell(row, cols.Hashrate))
	if err != nil {
		return model.MinerSpec{}, &model.SchemaError{Source: source, Column: cols.HashrateHeader, Reason: "model " + strconv.Quote(name) + ": " + err.Error()}
	}
	power, err := parseNumber(cell(row, cols.Power))
	if err != nil {
		return model.MinerSpec{}, &model.SchemaError{Source: source, Column: cols.PowerHeader, Reason: "model " + strconv.Quote(name) + ": " + err.Error()}
	}
	return model.MinerSpec{
		Model:        name,
		Hashrate:     hash,
		HashrateUnit: cols.Unit,
		PowerW:       power,
	}, nil
}

// ParseCell reads the numeric cell at column i of row. Thousands separators
// are ignored; blank, negative and non-finite values are errors.
func ParseCell(row []string, i int) (float64, error) {
	return parseNumber(cell(row, i))
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func modelNames(t *model.ReferenceTable, cols ColumnMapping) []string {
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, strings.TrimSpace(cell(row, cols.Model)))
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
