package models

import (
	"mining-pnl/internal/projection"

	"github.com/shopspring/decimal"
)

// ProjectionResponse represents the response from a projection run
type ProjectionResponse struct {
	Status        string                     `json:"status"`
	Summary       ProjectionSummary          `json:"summary"`
	Warnings      []string                   `json:"warnings,omitempty"`
	Monthly       []projection.MonthlyRecord `json:"monthly,omitempty"`
	AnnualAccrual []AnnualRow                `json:"annual_accrual,omitempty"`
	AnnualCash    []AnnualRow                `json:"annual_cash,omitempty"`
}

// ProjectionSummary contains horizon totals
type ProjectionSummary struct {
	StartMonth      string                    `json:"start_month"`
	EndMonth        string                    `json:"end_month"`
	Months          int                       `json:"months"`
	OperatingMonths int                       `json:"operating_months"`
	Fleets          []projection.FleetSummary `json:"fleets"`
}

// AnnualRow is one year of an accrual or cash summary. Money is rounded to
// cents and encoded as a decimal string.
type AnnualRow struct {
	Year            int             `json:"year"`
	Fleets          []AnnualFleet   `json:"fleets"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalPowerCost  decimal.Decimal `json:"total_power_cost"`
	OperatingProfit decimal.Decimal `json:"operating_profit"`
}

type AnnualFleet struct {
	Fleet     string          `json:"fleet"`
	Revenue   decimal.Decimal `json:"revenue"`
	PowerCost decimal.Decimal `json:"power_cost"`
}

// ModelInfo represents one row of a reference table
type ModelInfo struct {
	Model        string  `json:"model"`
	Hashrate     float64 `json:"hashrate"`
	HashrateUnit string  `json:"hashrate_unit"`
	PowerW       float64 `json:"power_w"`
	Display      string  `json:"display"`
}

// SourceInfo describes a reference table file
type SourceInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
