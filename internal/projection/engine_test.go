package projection

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"mining-pnl/internal/model"
	"mining-pnl/internal/network"
	"mining-pnl/internal/policy"
)

const tolerance = 1e-9

func roughlyEqual(a, b float64) bool {
	if b == 0 {
		return math.Abs(a) <= tolerance
	}
	return math.Abs(a-b) <= tolerance*math.Abs(b)
}

func mustMonth(t *testing.T, s string) model.Month {
	t.Helper()
	m, err := model.ParseMonth(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func mustSet(t *testing.T, months ...int) policy.Policy {
	t.Helper()
	p, err := policy.NewMonthSet(months)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func quietEngine() (*Engine, *[]string) {
	var lines []string
	e := New()
	e.Warnf = func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }
	return e, &lines
}

func fixedFleet(name string, coinsPerDay float64) Fleet {
	return Fleet{
		Params: model.FleetParams{
			Name:          name,
			ModelName:     "X",
			Units:         1,
			BasePriceUSD:  50000,
			SellLagMonths: 1,
		},
		Spec:       model.MinerSpec{Model: "X", Hashrate: 100, HashrateUnit: model.UnitTHps, PowerW: 3000},
		Production: network.FixedYield{CoinsPerDay: coinsPerDay},
	}
}

func TestScenarioQuarter(t *testing.T) {
	e, _ := quietEngine()
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{
			Start:             mustMonth(t, "2025-01"),
			End:               mustMonth(t, "2025-03"),
			ElecRateUSDPerKWh: 0.08,
		},
		Policy: mustSet(t, 1, 2, 3),
		Fleets: []Fleet{fixedFleet("btc", 0.001)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}
	days := []int{31, 28, 31}
	for i, r := range res.Records {
		fm := r.Fleets[0]
		if want := 0.001 * float64(days[i]); !roughlyEqual(fm.CoinsMined, want) {
			t.Errorf("month %d coins = %g, want %g", r.Month, fm.CoinsMined, want)
		}
		if want := fm.CoinsMined * 50000; !roughlyEqual(fm.RevenueAccrual, want) {
			t.Errorf("month %d revenue = %g, want %g", r.Month, fm.RevenueAccrual, want)
		}
		if want := 3000.0 * 24 * float64(days[i]) / 1000; !roughlyEqual(fm.KWh, want) {
			t.Errorf("month %d kwh = %g, want %g", r.Month, fm.KWh, want)
		}
		if !roughlyEqual(fm.PowerCost, fm.KWh*0.08) {
			t.Errorf("month %d power cost = %g", r.Month, fm.PowerCost)
		}
	}
	jan, feb := res.Records[0].Fleets[0], res.Records[1].Fleets[0]
	if jan.CashSales != 0 {
		t.Fatalf("cash_sales[Jan] = %g, want 0", jan.CashSales)
	}
	if feb.CashSales != jan.RevenueAccrual {
		t.Fatalf("cash_sales[Feb] = %g, want %g", feb.CashSales, jan.RevenueAccrual)
	}
	if res.Records[0].Period != time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("period = %v", res.Records[0].Period)
	}
}

func TestNonOperatingMonthsAreZero(t *testing.T) {
	e, _ := quietEngine()
	start := mustMonth(t, "2025-01")
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: start, End: mustMonth(t, "2026-12"), ElecRateUSDPerKWh: 0.081},
		Policy:      mustSet(t, 10, 11, 12, 1, 2, 3, 4),
		Fleets:      []Fleet{fixedFleet("btc", 0.002)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range res.Records {
		fm := r.Fleets[0]
		if r.Operating {
			if fm.CoinsMined <= 0 || r.State != model.StateMining {
				t.Errorf("%d-%02d operating but coins=%g state=%s", r.Year, r.Month, fm.CoinsMined, r.State)
			}
			continue
		}
		if fm.CoinsMined != 0 || fm.KWh != 0 || fm.RevenueAccrual != 0 || fm.PowerCost != 0 {
			t.Errorf("%d-%02d idle but produced %+v", r.Year, r.Month, fm)
		}
		if r.State != model.StateIdle {
			t.Errorf("%d-%02d state = %s", r.Year, r.Month, r.State)
		}
	}
}

func TestCashSettlementShift(t *testing.T) {
	for _, lag := range []int{0, 1, 3, 12, 30} {
		t.Run(fmt.Sprintf("lag=%d", lag), func(t *testing.T) {
			e, _ := quietEngine()
			f := fixedFleet("btc", 0.001)
			f.Params.SellLagMonths = lag
			f.Params.AnnualPricePct = 0.1
			res, err := e.Run(Inputs{
				Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2027-12"), ElecRateUSDPerKWh: 0.05},
				Policy:      mustSet(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12),
				Fleets:      []Fleet{f},
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			n := len(res.Records)
			var sumCash, sumAccrual, tail float64
			for i, r := range res.Records {
				fm := r.Fleets[0]
				if i < lag {
					if fm.CashSales != 0 {
						t.Fatalf("cash_sales[%d] = %g, want 0", i, fm.CashSales)
					}
				} else if fm.CashSales != res.Records[i-lag].Fleets[0].RevenueAccrual {
					t.Fatalf("cash_sales[%d] != accrual[%d]", i, i-lag)
				}
				sumCash += fm.CashSales
				sumAccrual += fm.RevenueAccrual
				if i >= n-lag {
					tail += fm.RevenueAccrual
				}
			}
			if !roughlyEqual(sumCash, sumAccrual-tail) {
				t.Fatalf("sum cash %g != accrual %g - tail %g", sumCash, sumAccrual, tail)
			}
			if !roughlyEqual(res.Fleets[0].CashSales, sumCash) {
				t.Fatalf("summary cash %g != %g", res.Fleets[0].CashSales, sumCash)
			}
		})
	}
}

func TestDifficultyGrowthMonotonic(t *testing.T) {
	e, _ := quietEngine()
	f := fixedFleet("btc", 0.001)
	f.Params.AnnualDifficultyPct = 0.25
	f.Params.AnnualPricePct = 0
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2030-12"), ElecRateUSDPerKWh: 0.08},
		Policy:      mustSet(t, 1),
		Fleets:      []Fleet{f},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	prev := math.Inf(1)
	for _, r := range res.Records {
		if r.Month != 1 {
			continue
		}
		c := r.Fleets[0].CoinsMined
		if !(c < prev) {
			t.Fatalf("%d January coins %g not below previous %g", r.Year, c, prev)
		}
		prev = c
	}
}

func TestRowYearIndexGrowth(t *testing.T) {
	f := fixedFleet("btc", 0.01)
	f.Params.AnnualPricePct = 0.5
	f.Params.AnnualDifficultyPct = 1
	a := model.Assumptions{Start: mustMonth(t, "2025-11"), ElecRateUSDPerKWh: 0.1, AnnualElecPct: 0.1}
	// Growth steps at the calendar-year boundary, not 12 months after start.
	fm := ProjectMonth(mustMonth(t, "2026-01"), true, 0.01, f, a)
	if !roughlyEqual(fm.Price, 75000) || !roughlyEqual(fm.DailyYield, 0.005) || !roughlyEqual(fm.ElecRate, 0.11) {
		t.Fatalf("year-1 values wrong: %+v", fm)
	}
	fm = ProjectMonth(mustMonth(t, "2025-12"), true, 0.01, f, a)
	if fm.Price != 50000 || fm.DailyYield != 0.01 || fm.ElecRate != 0.1 {
		t.Fatalf("year-0 values wrong: %+v", fm)
	}
}

func TestUnitNormalisationAcrossSheets(t *testing.T) {
	chain := network.Chain{BlockTimeS: 600, BlockReward: 3.125, PoolFee: 0.02}
	prod := network.NetworkHashrate{Chain: chain, NetworkHs: 650e18}
	th := Fleet{
		Params:     model.FleetParams{Name: "th", Units: 500, BasePriceUSD: 90000},
		Spec:       model.MinerSpec{Model: "S21", Hashrate: 200, HashrateUnit: model.UnitTHps, PowerW: 3500},
		Production: prod,
	}
	gh := th
	gh.Params.Name = "gh"
	gh.Spec = model.MinerSpec{Model: "S21", Hashrate: 200000, HashrateUnit: model.UnitGHps, PowerW: 3500}

	e, _ := quietEngine()
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-12"), ElecRateUSDPerKWh: 0.07},
		Policy:      mustSet(t, 1, 2, 3, 11, 12),
		Fleets:      []Fleet{th, gh},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range res.Records {
		a, b := r.Fleets[0], r.Fleets[1]
		if a.CoinsMined != b.CoinsMined || a.PowerCost != b.PowerCost {
			t.Fatalf("%d-%02d: TH/s %+v vs GH/s %+v", r.Year, r.Month, a, b)
		}
	}
}

func TestDisabledDifficultyWarns(t *testing.T) {
	e, lines := quietEngine()
	f := fixedFleet("etc", 0)
	f.Production = network.Difficulty{Enabled: false}
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-02")},
		Policy:      mustSet(t, 1, 2),
		Fleets:      []Fleet{f},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Warnings) != 1 || len(*lines) != 1 {
		t.Fatalf("expected one warning, got %v / %v", res.Warnings, *lines)
	}
	if !strings.HasPrefix((*lines)[0], "WARN") || !strings.Contains(res.Warnings[0], `"etc"`) {
		t.Fatalf("unexpected warning text: %q", (*lines)[0])
	}
	for _, r := range res.Records {
		if r.Fleets[0].CoinsMined != 0 {
			t.Fatalf("disabled fleet mined coins")
		}
		if r.Fleets[0].KWh == 0 {
			t.Fatalf("disabled-yield fleet still runs and draws power")
		}
	}
}

func TestZeroNetworkHashrate(t *testing.T) {
	e, _ := quietEngine()
	f := fixedFleet("btc", 0)
	f.Production = network.NetworkHashrate{Chain: network.Chain{BlockTimeS: 600, BlockReward: 3.125}, NetworkHs: 0}
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-01")},
		Policy:      mustSet(t, 1),
		Fleets:      []Fleet{f},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	c := res.Records[0].Fleets[0].CoinsMined
	if c != 0 || math.IsNaN(c) {
		t.Fatalf("coins = %g, want 0", c)
	}
}

func TestRunValidation(t *testing.T) {
	good := Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-03")},
		Policy:      mustSet(t, 1),
		Fleets:      []Fleet{fixedFleet("btc", 0.001)},
	}
	cases := map[string]func(in *Inputs){
		"end before start": func(in *Inputs) { in.Assumptions.End = mustMonth(t, "2024-12") },
		"no policy":        func(in *Inputs) { in.Policy = nil },
		"no fleets":        func(in *Inputs) { in.Fleets = nil },
		"negative units":   func(in *Inputs) { in.Fleets[0].Params.Units = -1 },
		"negative lag":     func(in *Inputs) { in.Fleets[0].Params.SellLagMonths = -1 },
		"duplicate name":   func(in *Inputs) { in.Fleets = append(in.Fleets, fixedFleet("btc", 0.1)) },
		"no production":    func(in *Inputs) { in.Fleets[0].Production = nil },
		"bad production":   func(in *Inputs) { in.Fleets[0].Production = network.FixedYield{CoinsPerDay: -1} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := good
			in.Fleets = append([]Fleet(nil), good.Fleets...)
			mutate(&in)
			e, _ := quietEngine()
			if _, err := e.Run(in); !errors.Is(err, model.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	got := Settle([]float64{1, 2, 3, 4}, 2)
	want := []float64{0, 0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Settle = %v, want %v", got, want)
		}
	}
	if got := Settle([]float64{1, 2}, 5); got[0] != 0 || got[1] != 0 {
		t.Fatalf("lag beyond horizon = %v", got)
	}
}

func TestWorkersBound(t *testing.T) {
	e, _ := quietEngine()
	e.Workers = 1
	fleets := make([]Fleet, 0, 4)
	for i := 0; i < 4; i++ {
		fleets = append(fleets, fixedFleet(fmt.Sprintf("f%d", i), 0.001*float64(i+1)))
	}
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-06")},
		Policy:      mustSet(t, 1, 2, 3, 4, 5, 6),
		Fleets:      fleets,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, name := range res.FleetNames() {
		if name != fmt.Sprintf("f%d", i) {
			t.Fatalf("fleet order not preserved: %v", res.FleetNames())
		}
		if fm, ok := res.Records[0].Fleet(name); !ok || !roughlyEqual(fm.DailyYield, 0.001*float64(i+1)) {
			t.Fatalf("fleet %s lookup wrong: %+v", name, fm)
		}
	}
}

func TestWriteMonthlyCSV(t *testing.T) {
	e, _ := quietEngine()
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-02"), ElecRateUSDPerKWh: 0.1},
		Policy:      mustSet(t, 1),
		Fleets:      []Fleet{fixedFleet("btc", 0.001), fixedFleet("etc", 0.5)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteMonthly(&buf, res); err != nil {
		t.Fatalf("WriteMonthly: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	header := rows[0]
	if header[0] != "period" || header[3] != "is_operating" || header[4] != "btc_model" || header[5] != "etc_model" {
		t.Fatalf("unexpected header: %v", header)
	}
	idx := -1
	for i, h := range header {
		if h == "etc_cash_sales" {
			idx = i
		}
	}
	if idx != len(header)-1 {
		t.Fatalf("etc_cash_sales should be last, header %v", header)
	}
	if rows[1][0] != "2025-01-01" || rows[1][3] != "true" || rows[2][3] != "false" {
		t.Fatalf("unexpected rows: %v", rows[1:])
	}
	if rows[2][idx] != "775000" {
		t.Fatalf("etc cash in Feb = %s, want 775000", rows[2][idx])
	}
}

func TestMarshalJSON(t *testing.T) {
	e, _ := quietEngine()
	res, err := e.Run(Inputs{
		Assumptions: model.Assumptions{Start: mustMonth(t, "2025-01"), End: mustMonth(t, "2025-01")},
		Policy:      mustSet(t, 1),
		Fleets:      []Fleet{fixedFleet("btc", 0.001)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	raw, err := MarshalJSON(res)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	for _, want := range []string{`"coins_mined"`, `"is_operating": true`, `"mode": "fixed_yield"`} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Errorf("JSON missing %s:\n%s", want, raw)
		}
	}
}
