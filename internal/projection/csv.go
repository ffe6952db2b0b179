package projection

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// fleetColumns are the per-fleet output columns; each is written once per
// fleet with a "<fleet>_" prefix, grouped by column.
var fleetColumns = []struct {
	name  string
	value func(FleetMonth) string
}{
	{"model", func(f FleetMonth) string { return f.Model }},
	{"units", func(f FleetMonth) string { return strconv.Itoa(f.Units) }},
	{"unit_hash", func(f FleetMonth) string { return fmtFloat(f.UnitHash) }},
	{"unit_hash_unit", func(f FleetMonth) string { return string(f.UnitHashUnit) }},
	{"unit_power_w", func(f FleetMonth) string { return fmtFloat(f.UnitPowerW) }},
	{"price_usd", func(f FleetMonth) string { return fmtFloat(f.Price) }},
	{"coins_mined", func(f FleetMonth) string { return fmtFloat(f.CoinsMined) }},
	{"revenue_accrual", func(f FleetMonth) string { return fmtFloat(f.RevenueAccrual) }},
	{"kwh", func(f FleetMonth) string { return fmtFloat(f.KWh) }},
	{"power_cost", func(f FleetMonth) string { return fmtFloat(f.PowerCost) }},
	{"cash_sales", func(f FleetMonth) string { return fmtFloat(f.CashSales) }},
}

// Header returns the CSV header for the given fleet names.
func Header(fleets []string) []string {
	header := []string{"period", "year", "month", "is_operating"}
	for _, col := range fleetColumns {
		for _, name := range fleets {
			header = append(header, name+"_"+col.name)
		}
	}
	return header
}

func WriteMonthlyCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteMonthly(f, res)
}

func WriteMonthly(out io.Writer, res *Result) error {
	w := csv.NewWriter(out)

	if err := w.Write(Header(res.FleetNames())); err != nil {
		return err
	}
	for _, r := range res.Records {
		row := []string{
			r.Period.Format("2006-01-02"),
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Month),
			strconv.FormatBool(r.Operating),
		}
		for _, col := range fleetColumns {
			for _, fm := range r.Fleets {
				row = append(row, col.value(fm))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
