package analysis

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// WriteAccrualCSV writes per-fleet revenue accrual and power cost plus totals.
func WriteAccrualCSV(path string, rows []AnnualRow) error {
	return writeFile(path, func(w io.Writer) error {
		return writeAnnual(w, rows, "revenue_accrual", "total_revenue")
	})
}

// WriteCashCSV writes per-fleet cash sales and power cost plus totals.
func WriteCashCSV(path string, rows []AnnualRow) error {
	return writeFile(path, func(w io.Writer) error {
		return writeAnnual(w, rows, "cash_sales", "total_sales")
	})
}

func WriteAccrual(w io.Writer, rows []AnnualRow) error {
	return writeAnnual(w, rows, "revenue_accrual", "total_revenue")
}

func WriteCash(w io.Writer, rows []AnnualRow) error {
	return writeAnnual(w, rows, "cash_sales", "total_sales")
}

func writeAnnual(out io.Writer, rows []AnnualRow, revenueCol, totalCol string) error {
	w := csv.NewWriter(out)
	header := []string{"year"}
	if len(rows) > 0 {
		for _, f := range rows[0].Fleets {
			header = append(header, f.Fleet+"_"+revenueCol)
		}
		for _, f := range rows[0].Fleets {
			header = append(header, f.Fleet+"_power_cost")
		}
	}
	header = append(header, totalCol, "total_power_cost", "operating_profit")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Year)}
		for _, f := range r.Fleets {
			rec = append(rec, usd(f.Revenue))
		}
		for _, f := range r.Fleets {
			rec = append(rec, usd(f.PowerCost))
		}
		rec = append(rec, usd(r.TotalRevenue), usd(r.TotalPowerCost), usd(r.OperatingProfit))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func usd(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
