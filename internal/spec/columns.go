package spec

import (
	"strings"

	"mining-pnl/internal/model"
)

// ColumnMapping binds the fields of a MinerSpec to column indexes of one
// reference table. Build it with MapColumns; it is only valid for the header
// it was built from.
type ColumnMapping struct {
	Model    int
	Hashrate int
	Power    int

	ModelHeader    string
	HashrateHeader string
	PowerHeader    string

	Unit model.HashrateUnit
}

// hashrate units recognised in a header, most specific first.
var headerUnits = []struct {
	token string
	unit  model.HashrateUnit
}{
	{"th/s", model.UnitTHps},
	{"gh/s", model.UnitGHps},
	{"ph/s", model.UnitPHps},
	{"eh/s", model.UnitEHps},
}

// MapColumns locates the model, hashrate and power columns:
//   - model: a header equal to "model", else the only header containing "model"
//   - hashrate: the only header containing "hashrate"; its unit comes from the header text
//   - power: the only header containing both "power" and "(w"
//
// More than one candidate for a field is a SchemaError rather than a guess.
func MapColumns(header []string, source string) (ColumnMapping, error) {
	m := ColumnMapping{Model: -1, Hashrate: -1, Power: -1}

	var modelCands, hashCands, powerCands []int
	for i, h := range header {
		hl := normalizeHeader(h)
		if hl == "model" {
			m.Model = i
		}
		if strings.Contains(hl, "model") {
			modelCands = append(modelCands, i)
		}
		if strings.Contains(hl, "hashrate") {
			hashCands = append(hashCands, i)
		}
		if strings.Contains(hl, "power") && strings.Contains(hl, "(w") {
			powerCands = append(powerCands, i)
		}
	}

	if m.Model < 0 {
		switch len(modelCands) {
		case 0:
			return m, &model.SchemaError{Source: source, Reason: "no 'model' column"}
		case 1:
			m.Model = modelCands[0]
		default:
			return m, ambiguous(source, "model", header, modelCands)
		}
	}

	switch len(hashCands) {
	case 0:
		return m, &model.SchemaError{Source: source, Reason: "no hashrate column"}
	case 1:
		m.Hashrate = hashCands[0]
	default:
		return m, ambiguous(source, "hashrate", header, hashCands)
	}

	switch len(powerCands) {
	case 0:
		return m, &model.SchemaError{Source: source, Reason: "no power (W) column"}
	case 1:
		m.Power = powerCands[0]
	default:
		return m, ambiguous(source, "power (W)", header, powerCands)
	}

	m.ModelHeader = header[m.Model]
	m.HashrateHeader = header[m.Hashrate]
	m.PowerHeader = header[m.Power]

	hl := normalizeHeader(m.HashrateHeader)
	for _, u := range headerUnits {
		if strings.Contains(hl, u.token) {
			m.Unit = u.unit
			break
		}
	}
	if m.Unit == "" {
		return m, &model.SchemaError{Source: source, Column: m.HashrateHeader, Reason: "cannot determine hashrate unit (expected TH/s or GH/s)"}
	}
	return m, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func ambiguous(source, field string, header []string, idx []int) error {
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, header[i])
	}
	return &model.SchemaError{Source: source, Reason: "ambiguous " + field + " columns: " + strings.Join(names, ", ")}
}
