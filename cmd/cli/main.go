package main

import (
	"fmt"
	"os"

	"mining-pnl/internal/logging"

	flags "github.com/jessevdk/go-flags"
)

type globalOptions struct {
	LogFile string `long:"logfile" description:"Also write logs to this file (rotated at 10 MiB, 3 rolls kept)"`
	Workers int    `long:"workers" default:"0" description:"Max fleets projected concurrently (0 = one per fleet)"`
}

var opts globalOptions

// startLogging must run at the top of every command's Execute; go-flags has
// parsed the global options by then.
func startLogging() (func() error, error) {
	return logging.Setup(opts.LogFile, os.Stderr)
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "cli"
	parser.AddCommand("monthly", "Project monthly P&L",
		"Runs the monthly projection and writes one row per month with every fleet side by side.", &monthlyCommand{})
	parser.AddCommand("annual", "Summarise P&L by year",
		"Runs the projection and writes accrual-basis and cash-basis annual summaries.", &annualCommand{})
	parser.AddCommand("models", "List models in a reference table",
		"Resolves every row of a miner reference table.", &modelsCommand{})
	parser.AddCommand("compare-hash", "Compare miner efficiency across tables",
		"Normalises reference tables to TH/s and GH/s and computes J/TH and J/GH.", &compareHashCommand{})
	return parser
}

func main() {
	parser := newParser()
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok {
			if e.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, e.Message)
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, e.Message)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
