package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"mining-pnl/internal/model"
	"mining-pnl/internal/spec"
)

// ChainTable is a reference sheet labelled with the chain it mines.
type ChainTable struct {
	Chain string
	Table *model.ReferenceTable
}

// HashRow is one miner normalised to both TH/s and GH/s.
// Fields that could not be read are NaN.
type HashRow struct {
	Chain  string
	Model  string
	Unit   model.HashrateUnit
	THs    float64
	GHs    float64
	PowerW float64
	JPerTH float64
	JPerGH float64
}

// CompareHashrates normalises every row of every table. A table whose
// columns cannot be mapped fails the comparison; an unreadable hashrate or
// power cell leaves only the fields derived from it NaN.
func CompareHashrates(tables ...ChainTable) ([]HashRow, error) {
	var out []HashRow
	for _, ct := range tables {
		cols, err := spec.MapColumns(ct.Table.Header, ct.Table.Source)
		if err != nil {
			return nil, err
		}
		for _, row := range ct.Table.Rows {
			hr := HashRow{Chain: ct.Chain, Unit: cols.Unit, THs: math.NaN(), GHs: math.NaN(), PowerW: math.NaN()}
			if cols.Model < len(row) {
				hr.Model = strings.TrimSpace(row[cols.Model])
			}
			if rate, err := spec.ParseCell(row, cols.Hashrate); err == nil {
				hs := rate * cols.Unit.Scale()
				hr.THs = hs / 1e12
				hr.GHs = hs / 1e9
			}
			if w, err := spec.ParseCell(row, cols.Power); err == nil {
				hr.PowerW = w
			}
			hr.JPerTH = efficiency(hr.PowerW, hr.THs)
			hr.JPerGH = efficiency(hr.PowerW, hr.GHs)
			out = append(out, hr)
		}
	}
	return out, nil
}

func efficiency(powerW, rate float64) float64 {
	if math.IsNaN(powerW) || math.IsNaN(rate) || rate == 0 {
		return math.NaN()
	}
	return powerW / rate
}

func WriteHashCompareCSV(out io.Writer, rows []HashRow) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"chain", "model", "source_unit", "hashrate_THps", "hashrate_GHps", "power (W)", "J_per_TH", "J_per_GH"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Chain, r.Model, string(r.Unit), num(r.THs), num(r.GHs), num(r.PowerW), num(r.JPerTH), num(r.JPerGH)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteHashCompareMarkdown writes a short human-readable summary.
func WriteHashCompareMarkdown(out io.Writer, tables []ChainTable, rows []HashRow) error {
	var sources []string
	for _, ct := range tables {
		sources = append(sources, fmt.Sprintf("%s (%s)", ct.Table.Source, ct.Chain))
	}
	lines := []string{
		"# Hashrate Comparison (normalized)",
		"",
		"- Source: " + strings.Join(sources, " & "),
		"- TH/s → GH/s ×1000; GH/s → TH/s ÷1000.",
		fmt.Sprintf("- Rows: %d", len(rows)),
	}
	if best, ok := mostEfficient(rows); ok {
		lines = append(lines, fmt.Sprintf("- Most efficient: %s %s at %.2f J/TH", best.Chain, best.Model, best.JPerTH))
	}
	_, err := io.WriteString(out, strings.Join(lines, "\n")+"\n")
	return err
}

func mostEfficient(rows []HashRow) (HashRow, bool) {
	var best HashRow
	found := false
	for _, r := range rows {
		if math.IsNaN(r.JPerTH) {
			continue
		}
		if !found || r.JPerTH < best.JPerTH {
			best = r
			found = true
		}
	}
	return best, found
}

func num(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
