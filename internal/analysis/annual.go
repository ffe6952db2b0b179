package analysis

import (
	"sort"

	"mining-pnl/internal/model"
	"mining-pnl/internal/projection"

	"github.com/shopspring/decimal"
)

// FleetYear is one fleet's contribution to a year.
type FleetYear struct {
	Fleet     string
	Revenue   decimal.Decimal // accrual revenue, or cash sales in a cash summary
	PowerCost decimal.Decimal
}

// AnnualRow is one year of a P&L summary.
type AnnualRow struct {
	Year            int
	Fleets          []FleetYear
	TotalRevenue    decimal.Decimal
	TotalPowerCost  decimal.Decimal
	OperatingProfit decimal.Decimal
}

// AccrualByYear sums revenue accrual and power cost per calendar year of the
// horizon. Revenue is recognised in the month it was mined.
func AccrualByYear(res *projection.Result) []AnnualRow {
	names := res.FleetNames()
	byYear := map[int]*AnnualRow{}
	for _, r := range res.Records {
		row := yearRow(byYear, r.Year, names)
		for fi, fm := range r.Fleets {
			row.Fleets[fi].Revenue = row.Fleets[fi].Revenue.Add(decimal.NewFromFloat(fm.RevenueAccrual))
			row.Fleets[fi].PowerCost = row.Fleets[fi].PowerCost.Add(decimal.NewFromFloat(fm.PowerCost))
		}
	}
	return finish(byYear)
}

// CashByYear buckets each fleet's accrual into the year it settles,
// period + that fleet's lag. Sales can land in years after the horizon;
// those years carry no power cost. Power cost stays in the year it is incurred.
func CashByYear(res *projection.Result) []AnnualRow {
	names := res.FleetNames()
	byYear := map[int]*AnnualRow{}
	for _, r := range res.Records {
		m := model.MonthOf(r.Period)
		for fi, fm := range r.Fleets {
			settled := m.AddMonths(res.Fleets[fi].SellLagMonths)
			sale := yearRow(byYear, settled.Year, names)
			sale.Fleets[fi].Revenue = sale.Fleets[fi].Revenue.Add(decimal.NewFromFloat(fm.RevenueAccrual))

			cost := yearRow(byYear, r.Year, names)
			cost.Fleets[fi].PowerCost = cost.Fleets[fi].PowerCost.Add(decimal.NewFromFloat(fm.PowerCost))
		}
	}
	return finish(byYear)
}

func yearRow(byYear map[int]*AnnualRow, year int, names []string) *AnnualRow {
	if row, ok := byYear[year]; ok {
		return row
	}
	row := &AnnualRow{Year: year, Fleets: make([]FleetYear, len(names))}
	for i, n := range names {
		row.Fleets[i] = FleetYear{Fleet: n, Revenue: decimal.Zero, PowerCost: decimal.Zero}
	}
	byYear[year] = row
	return row
}

func finish(byYear map[int]*AnnualRow) []AnnualRow {
	out := make([]AnnualRow, 0, len(byYear))
	for _, row := range byYear {
		row.TotalRevenue = decimal.Zero
		row.TotalPowerCost = decimal.Zero
		for _, f := range row.Fleets {
			row.TotalRevenue = row.TotalRevenue.Add(f.Revenue)
			row.TotalPowerCost = row.TotalPowerCost.Add(f.PowerCost)
		}
		row.OperatingProfit = row.TotalRevenue.Sub(row.TotalPowerCost)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}
