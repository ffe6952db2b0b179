package projection

import (
	"time"

	"mining-pnl/internal/model"
	"mining-pnl/internal/network"
)

// FleetMonth is one fleet's figures for one month.
type FleetMonth struct {
	Fleet string `json:"fleet"`

	Model        string             `json:"model"`
	Units        int                `json:"units"`
	UnitHash     float64            `json:"unit_hash"`
	UnitHashUnit model.HashrateUnit `json:"unit_hash_unit"`
	UnitPowerW   float64            `json:"unit_power_w"`

	Price      float64 `json:"price_usd"`
	DailyYield float64 `json:"daily_yield"`
	ElecRate   float64 `json:"elec_rate_usd_per_kwh"`

	CoinsMined     float64 `json:"coins_mined"`
	RevenueAccrual float64 `json:"revenue_accrual"`
	KWh            float64 `json:"kwh"`
	PowerCost      float64 `json:"power_cost"`
	CashSales      float64 `json:"cash_sales"`
}

// MonthlyRecord is one row of projection output: one calendar month with
// every fleet side by side, in input fleet order.
type MonthlyRecord struct {
	Index  int       `json:"index"`
	Period time.Time `json:"period"`
	Year   int       `json:"year"`
	Month  int       `json:"month"`
	Days   int       `json:"days"`

	Operating bool                 `json:"is_operating"`
	State     model.OperatingState `json:"state"`

	Fleets []FleetMonth `json:"fleets"`
}

// Fleet returns the named fleet's figures, if present.
func (r MonthlyRecord) Fleet(name string) (FleetMonth, bool) {
	for _, f := range r.Fleets {
		if f.Fleet == name {
			return f, true
		}
	}
	return FleetMonth{}, false
}

// FleetSummary carries the per-run constants and horizon totals of a fleet.
type FleetSummary struct {
	Fleet         string       `json:"fleet"`
	Mode          network.Mode `json:"mode"`
	FleetHashrate float64      `json:"fleet_hashrate_hs"`
	BaselineYield float64      `json:"baseline_coins_per_day"`
	SellLagMonths int          `json:"sell_lag_months"`

	CoinsMined     float64 `json:"coins_mined"`
	RevenueAccrual float64 `json:"revenue_accrual"`
	KWh            float64 `json:"kwh"`
	PowerCost      float64 `json:"power_cost"`
	CashSales      float64 `json:"cash_sales"`
}

type Result struct {
	Records  []MonthlyRecord `json:"records"`
	Fleets   []FleetSummary  `json:"fleets"`
	Warnings []string        `json:"warnings,omitempty"`
}

// FleetNames returns fleet names in output order.
func (r *Result) FleetNames() []string {
	out := make([]string, 0, len(r.Fleets))
	for _, f := range r.Fleets {
		out = append(out, f.Fleet)
	}
	return out
}
