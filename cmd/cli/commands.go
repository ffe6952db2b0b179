package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mining-pnl/internal/analysis"
	"mining-pnl/internal/config"
	"mining-pnl/internal/data"
	"mining-pnl/internal/network"
	"mining-pnl/internal/projection"
	"mining-pnl/internal/spec"

	"github.com/dustin/go-humanize"
)

type monthlyCommand struct {
	Config string `short:"c" long:"config" required:"true" description:"Path to YAML, JSON or TOML assumptions"`
	Out    string `short:"o" long:"out" default:"results/monthly_model.csv" description:"Output path"`
	Format string `long:"format" choice:"csv" choice:"json" default:"csv" description:"Output format"`
}

func (c *monthlyCommand) Execute([]string) error {
	stop, err := startLogging()
	if err != nil {
		return err
	}
	defer stop()

	res, err := project(c.Config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Out), 0o755); err != nil {
		return err
	}
	switch c.Format {
	case "json":
		err = projection.WriteJSON(c.Out, res)
	default:
		err = projection.WriteMonthlyCSV(c.Out, res)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Records), c.Out)
	printFleetTotals(res)
	return nil
}

type annualCommand struct {
	Config     string `short:"c" long:"config" required:"true" description:"Path to YAML, JSON or TOML assumptions"`
	AccrualOut string `long:"accrual-out" default:"results/annual_pnl_accrual.csv" description:"Accrual-basis output path"`
	CashOut    string `long:"cash-out" default:"results/annual_pnl_cash.csv" description:"Cash-basis output path"`
}

func (c *annualCommand) Execute([]string) error {
	stop, err := startLogging()
	if err != nil {
		return err
	}
	defer stop()

	res, err := project(c.Config)
	if err != nil {
		return err
	}
	accrual := analysis.AccrualByYear(res)
	cash := analysis.CashByYear(res)
	for _, p := range []string{c.AccrualOut, c.CashOut} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	if err := analysis.WriteAccrualCSV(c.AccrualOut, accrual); err != nil {
		return err
	}
	if err := analysis.WriteCashCSV(c.CashOut, cash); err != nil {
		return err
	}

	fmt.Printf("Wrote %d accrual years to %s and %d cash years to %s\n", len(accrual), c.AccrualOut, len(cash), c.CashOut)
	fmt.Printf("%-6s %18s %18s %18s\n", "year", "revenue", "cash sales", "power cost")
	cashByYear := map[int]analysis.AnnualRow{}
	for _, r := range cash {
		cashByYear[r.Year] = r
	}
	for _, r := range accrual {
		sales, _ := cashByYear[r.Year].TotalRevenue.Float64()
		rev, _ := r.TotalRevenue.Float64()
		cost, _ := r.TotalPowerCost.Float64()
		fmt.Printf("%-6d %18s %18s %18s\n", r.Year, usd(rev), usd(sales), usd(cost))
	}
	return nil
}

type modelsCommand struct {
	Source string `short:"s" long:"source" required:"true" description:"Reference table CSV"`
}

func (c *modelsCommand) Execute([]string) error {
	stop, err := startLogging()
	if err != nil {
		return err
	}
	defer stop()

	t, err := data.LoadReferenceTable(c.Source)
	if err != nil {
		return err
	}
	specs, err := spec.ListModels(t)
	if err != nil {
		return err
	}
	fmt.Printf("%-28s %14s %10s\n", "model", "hashrate", "power (W)")
	for _, s := range specs {
		fmt.Printf("%-28s %14s %10s\n", s.Model, network.Humanise(s.HashrateHs()), humanize.Commaf(s.PowerW))
	}
	fmt.Printf("%d models in %s\n", len(specs), t.Source)
	return nil
}

type compareHashCommand struct {
	Tables []string `short:"t" long:"table" required:"true" description:"CHAIN=path to a reference table (repeatable)"`
	OutDir string   `long:"out-dir" default:"results" description:"Directory for hash_compare.csv and hash_compare.md"`
}

func (c *compareHashCommand) Execute([]string) error {
	stop, err := startLogging()
	if err != nil {
		return err
	}
	defer stop()

	var tables []analysis.ChainTable
	for _, arg := range c.Tables {
		chain, path, ok := strings.Cut(arg, "=")
		if !ok || chain == "" || path == "" {
			return fmt.Errorf("--table %q: expected CHAIN=path", arg)
		}
		t, err := data.LoadReferenceTable(path)
		if err != nil {
			return err
		}
		tables = append(tables, analysis.ChainTable{Chain: chain, Table: t})
	}
	rows, err := analysis.CompareHashrates(tables...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return err
	}
	csvPath := filepath.Join(c.OutDir, "hash_compare.csv")
	mdPath := filepath.Join(c.OutDir, "hash_compare.md")
	if err := writeWith(csvPath, func(f *os.File) error { return analysis.WriteHashCompareCSV(f, rows) }); err != nil {
		return err
	}
	if err := writeWith(mdPath, func(f *os.File) error { return analysis.WriteHashCompareMarkdown(f, tables, rows) }); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s and %s\n", len(rows), csvPath, mdPath)
	return nil
}

func project(cfgPath string) (*projection.Result, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	in, err := cfg.Inputs(nil)
	if err != nil {
		return nil, err
	}
	log.Printf("Projection: %s..%s, operating %v, %d fleets", in.Assumptions.Start, in.Assumptions.End, in.Policy, len(in.Fleets))
	engine := projection.New()
	engine.Workers = opts.Workers
	return engine.Run(in)
}

func printFleetTotals(res *projection.Result) {
	for _, f := range res.Fleets {
		fmt.Printf("fleet %s (%s, %s, lag %d): coins=%s accrual=%s cash=%s power=%s kWh=%s\n",
			f.Fleet, f.Mode, network.Humanise(f.FleetHashrate), f.SellLagMonths,
			humanize.FormatFloat("#,###.####", f.CoinsMined),
			usd(f.RevenueAccrual), usd(f.CashSales), usd(f.PowerCost),
			humanize.Comma(int64(f.KWh)))
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func usd(x float64) string {
	return "$" + humanize.FormatFloat("#,###.##", x)
}

func writeWith(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
