package projection

import (
	"fmt"
	"log"
	"math"

	"mining-pnl/internal/model"
	"mining-pnl/internal/network"
	"mining-pnl/internal/policy"

	"github.com/remeh/sizedwaitgroup"
)

// Fleet bundles a fleet's economics with its resolved spec and production model.
type Fleet struct {
	Params     model.FleetParams
	Spec       model.MinerSpec
	Production network.ProductionModel
}

// Inputs is everything one projection run consumes.
type Inputs struct {
	Assumptions model.Assumptions
	Policy      policy.Policy
	Fleets      []Fleet
}

type Engine struct {
	// Workers bounds concurrent fleet projections. <= 0 means one per fleet.
	Workers int
	// Warnf receives non-fatal diagnostics. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

func New() *Engine { return &Engine{Warnf: log.Printf} }

// Run projects every fleet over the horizon, then applies each fleet's
// settlement lag to its finished accrual series.
func (e *Engine) Run(in Inputs) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	months := model.MonthRange(in.Assumptions.Start, in.Assumptions.End)
	operating := make([]bool, len(months))
	for i, m := range months {
		operating[i] = in.Policy.Operating(m)
	}

	res := &Result{}
	for _, f := range in.Fleets {
		if reason := network.DisabledReason(f.Production); reason != "" {
			msg := fmt.Sprintf("fleet %q: %s", f.Params.Name, reason)
			res.Warnings = append(res.Warnings, msg)
			e.warnf("WARN Engine: %s", msg)
		}
	}

	// Stage 1: generate. Fleets share no mutable state; each goroutine
	// writes only its own slot.
	series := make([][]FleetMonth, len(in.Fleets))
	workers := e.Workers
	if workers <= 0 {
		workers = len(in.Fleets)
	}
	swg := sizedwaitgroup.New(workers)
	for fi := range in.Fleets {
		swg.Add()
		go func(fi int) {
			defer swg.Done()
			series[fi] = projectFleet(months, operating, in.Fleets[fi], in.Assumptions)
		}(fi)
	}
	swg.Wait()

	// Stage 2: shift. Needs every accrual value finalised.
	for fi, f := range in.Fleets {
		accrual := make([]float64, len(months))
		for i := range months {
			accrual[i] = series[fi][i].RevenueAccrual
		}
		cash := Settle(accrual, f.Params.SellLagMonths)
		for i := range months {
			series[fi][i].CashSales = cash[i]
		}
	}

	res.Records = make([]MonthlyRecord, len(months))
	for i, m := range months {
		rec := MonthlyRecord{
			Index:     i,
			Period:    m.FirstDay(),
			Year:      m.Year,
			Month:     int(m.Month),
			Days:      m.Days(),
			Operating: operating[i],
			State:     model.StateFromOperating(operating[i]),
			Fleets:    make([]FleetMonth, len(in.Fleets)),
		}
		for fi := range in.Fleets {
			rec.Fleets[fi] = series[fi][i]
		}
		res.Records[i] = rec
	}

	res.Fleets = make([]FleetSummary, len(in.Fleets))
	for fi, f := range in.Fleets {
		fleetHs := network.FleetHashrate(f.Params.Units, f.Spec)
		s := FleetSummary{
			Fleet:         f.Params.Name,
			Mode:          f.Production.Mode(),
			FleetHashrate: fleetHs,
			BaselineYield: f.Production.DailyYield(fleetHs),
			SellLagMonths: f.Params.SellLagMonths,
		}
		for _, fm := range series[fi] {
			s.CoinsMined += fm.CoinsMined
			s.RevenueAccrual += fm.RevenueAccrual
			s.KWh += fm.KWh
			s.PowerCost += fm.PowerCost
			s.CashSales += fm.CashSales
		}
		res.Fleets[fi] = s
	}
	return res, nil
}

func (e *Engine) warnf(format string, args ...any) {
	if e.Warnf != nil {
		e.Warnf(format, args...)
	}
}

func projectFleet(months []model.Month, operating []bool, f Fleet, a model.Assumptions) []FleetMonth {
	baseline := f.Production.DailyYield(network.FleetHashrate(f.Params.Units, f.Spec))
	out := make([]FleetMonth, len(months))
	for i, m := range months {
		out[i] = ProjectMonth(m, operating[i], baseline, f, a)
	}
	return out
}

// ProjectMonth computes one fleet's accrual-basis figures for month m.
// baseline is the fleet's coins/day at the horizon start. CashSales is left
// zero; Settle fills it in once the whole series exists.
func ProjectMonth(m model.Month, operating bool, baseline float64, f Fleet, a model.Assumptions) FleetMonth {
	yi := float64(a.YearIndex(m))
	p := f.Params

	fm := FleetMonth{
		Fleet:        p.Name,
		Model:        f.Spec.Model,
		Units:        p.Units,
		UnitHash:     f.Spec.Hashrate,
		UnitHashUnit: f.Spec.HashrateUnit,
		UnitPowerW:   f.Spec.PowerW,

		Price: p.BasePriceUSD * math.Pow(1+p.AnnualPricePct, yi),
		// Rising difficulty divides the yield a little more each year.
		DailyYield: baseline / math.Pow(1+p.AnnualDifficultyPct, yi),
		ElecRate:   a.ElecRateUSDPerKWh * math.Pow(1+a.AnnualElecPct, yi),
	}
	if !operating {
		return fm
	}
	days := float64(m.Days())
	fm.CoinsMined = fm.DailyYield * days
	fm.RevenueAccrual = fm.CoinsMined * fm.Price
	fm.KWh = float64(p.Units) * f.Spec.PowerW * 24 * days / 1000
	fm.PowerCost = fm.KWh * fm.ElecRate
	return fm
}

// Settle shifts an accrual series forward by lag months: out[i] = accrual[i-lag]
// for i >= lag, else 0. Accrual in the last lag months stays unsettled
// within the horizon.
func Settle(accrual []float64, lag int) []float64 {
	out := make([]float64, len(accrual))
	if lag < 0 {
		lag = 0
	}
	for i := lag; i < len(accrual); i++ {
		out[i] = accrual[i-lag]
	}
	return out
}

func validate(in Inputs) error {
	if err := in.Assumptions.Validate(); err != nil {
		return err
	}
	if in.Policy == nil {
		return model.MissingField("operating_months")
	}
	if len(in.Fleets) == 0 {
		return model.MissingField("fleets")
	}
	seen := map[string]bool{}
	for i, f := range in.Fleets {
		prefix := fmt.Sprintf("fleets[%d]", i)
		if err := f.Params.Validate(); err != nil {
			return &model.ConfigError{Field: prefix, Reason: err.Error()}
		}
		if seen[f.Params.Name] {
			return &model.ConfigError{Field: prefix + ".name", Reason: fmt.Sprintf("duplicate fleet name %q", f.Params.Name)}
		}
		seen[f.Params.Name] = true
		if f.Production == nil {
			return &model.ConfigError{Field: prefix, Reason: "no production model (set network_hashrate, difficulty fields or baseline_coins_per_day)"}
		}
		if err := f.Production.Validate(prefix); err != nil {
			return err
		}
	}
	return nil
}
