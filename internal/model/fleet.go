package model

import (
	"errors"
	"math"
)

// FleetParams defines the economics of one homogeneous fleet.
// Units:
// - BasePriceUSD: USD per coin at the start of the horizon
// - AnnualPricePct, AnnualDifficultyPct: fractional yearly growth (0.05 = 5%/yr)
// - SellLagMonths: whole months between accrual and cash settlement
type FleetParams struct {
	Name      string
	Source    string
	ModelName string
	Units     int

	BasePriceUSD        float64
	AnnualPricePct      float64
	AnnualDifficultyPct float64

	SellLagMonths int
}

func (p FleetParams) Validate() error {
	if p.Name == "" {
		return errors.New("Name is required")
	}
	if p.Units < 0 {
		return errors.New("Units must be >= 0")
	}
	if p.BasePriceUSD < 0 || math.IsNaN(p.BasePriceUSD) {
		return errors.New("BasePriceUSD must be >= 0")
	}
	if p.AnnualPricePct <= -1 {
		return errors.New("AnnualPricePct must be > -1")
	}
	if p.AnnualDifficultyPct <= -1 {
		return errors.New("AnnualDifficultyPct must be > -1")
	}
	if p.SellLagMonths < 0 {
		return errors.New("SellLagMonths must be >= 0")
	}
	return nil
}

// Assumptions are the fleet-independent projection inputs.
type Assumptions struct {
	Start Month
	End   Month

	ElecRateUSDPerKWh float64
	AnnualElecPct     float64
}

func (a Assumptions) Validate() error {
	if a.End.Before(a.Start) {
		return &ConfigError{Field: "end_month", Reason: "precedes start_month " + a.Start.String()}
	}
	if a.ElecRateUSDPerKWh < 0 {
		return &ConfigError{Field: "elec_rate_usd_per_kwh", Reason: "must be >= 0"}
	}
	if a.AnnualElecPct <= -1 {
		return &ConfigError{Field: "annual_power_pct", Reason: "must be > -1"}
	}
	return nil
}

// YearIndex is the number of calendar-year boundaries between the horizon
// start and m. Growth compounds once per covered year.
func (a Assumptions) YearIndex(m Month) int {
	return m.Year - a.Start.Year
}
