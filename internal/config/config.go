package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"mining-pnl/internal/data"
	"mining-pnl/internal/model"
	"mining-pnl/internal/network"
	"mining-pnl/internal/policy"
	"mining-pnl/internal/projection"
	"mining-pnl/internal/spec"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// DefaultElecRate is used when elec_rate_usd_per_kwh is omitted.
const DefaultElecRate = 0.081

// Config is the on-disk configuration shape (YAML, JSON or TOML).
// Pointer fields distinguish "absent" from an explicit zero.
type Config struct {
	StartMonth string `yaml:"start_month" toml:"start_month" json:"start_month"`
	EndMonth   string `yaml:"end_month" toml:"end_month" json:"end_month"`

	OperatingMonths []int         `yaml:"operating_months" toml:"operating_months" json:"operating_months,omitempty"`
	WinterMonths    []int         `yaml:"winter_months" toml:"winter_months" json:"winter_months,omitempty"`
	OperatingWindow *WindowConfig `yaml:"operating_window" toml:"operating_window" json:"operating_window,omitempty"`

	SellLagMonths     *int     `yaml:"sell_lag_months" toml:"sell_lag_months" json:"sell_lag_months"`
	ElecRateUSDPerKWh *float64 `yaml:"elec_rate_usd_per_kwh" toml:"elec_rate_usd_per_kwh" json:"elec_rate_usd_per_kwh,omitempty"`
	AnnualPowerPct    float64  `yaml:"annual_power_pct" toml:"annual_power_pct" json:"annual_power_pct"`

	Fleets []FleetConfig `yaml:"fleets" toml:"fleets" json:"fleets"`
}

// WindowConfig is an inclusive month range that may wrap the year end.
type WindowConfig struct {
	From int `yaml:"from" toml:"from" json:"from"`
	To   int `yaml:"to" toml:"to" json:"to"`
}

type FleetConfig struct {
	Name      string `yaml:"name" toml:"name" json:"name"`
	SourceCSV string `yaml:"source_csv" toml:"source_csv" json:"source_csv"`
	ModelName string `yaml:"model_name" toml:"model_name" json:"model_name"`
	Units     *int   `yaml:"units" toml:"units" json:"units"`

	BasePriceUSD        *float64 `yaml:"base_price_usd" toml:"base_price_usd" json:"base_price_usd"`
	AnnualPricePct      float64  `yaml:"annual_price_pct" toml:"annual_price_pct" json:"annual_price_pct"`
	AnnualDifficultyPct float64  `yaml:"annual_difficulty_pct" toml:"annual_difficulty_pct" json:"annual_difficulty_pct"`

	// SellLagMonths overrides the global lag for this fleet.
	SellLagMonths *int `yaml:"sell_lag_months" toml:"sell_lag_months" json:"sell_lag_months,omitempty"`

	// NetworkHashrate is a string such as "650 EH/s" or a bare number in H/s.
	NetworkHashrate any `yaml:"network_hashrate" toml:"network_hashrate" json:"network_hashrate,omitempty"`

	UseDifficulty *bool    `yaml:"use_difficulty" toml:"use_difficulty" json:"use_difficulty,omitempty"`
	DifficultyNow *float64 `yaml:"difficulty_now" toml:"difficulty_now" json:"difficulty_now,omitempty"`

	BlockTimeS  *float64 `yaml:"block_time_s" toml:"block_time_s" json:"block_time_s,omitempty"`
	BlockReward *float64 `yaml:"block_reward" toml:"block_reward" json:"block_reward,omitempty"`
	PoolFeePct  *float64 `yaml:"pool_fee_pct" toml:"pool_fee_pct" json:"pool_fee_pct,omitempty"`

	BaselineCoinsPerDay *float64 `yaml:"baseline_coins_per_day" toml:"baseline_coins_per_day" json:"baseline_coins_per_day,omitempty"`
}

// TableLoader supplies parsed reference tables. *data.TableCache satisfies it.
type TableLoader interface {
	Load(path string) (*model.ReferenceTable, error)
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked decodes the file and resolves fleet source paths, but does
// not validate. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.ResolveSources(filepath.Dir(path))
	return c, nil
}

// Decode parses raw by format, which is a file extension (".toml") or a
// bare name ("toml"). Anything that is not TOML goes through the YAML
// decoder, which also accepts JSON.
func Decode(raw []byte, format string) (*Config, error) {
	var c Config
	switch name := strings.TrimPrefix(strings.ToLower(format), "."); name {
	case "toml":
		// go-toml refuses integer literals in float fields, so the document
		// goes through a generic tree and the YAML decoder, which widens them.
		tree, err := toml.LoadBytes(raw)
		if err != nil {
			return nil, &model.ConfigError{Field: name, Reason: err.Error()}
		}
		generic, err := yaml.Marshal(tree.ToMap())
		if err != nil {
			return nil, &model.ConfigError{Field: name, Reason: err.Error()}
		}
		if err := yaml.Unmarshal(generic, &c); err != nil {
			return nil, &model.ConfigError{Field: name, Reason: err.Error()}
		}
	default:
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, &model.ConfigError{Field: "yaml", Reason: err.Error()}
		}
	}
	return &c, nil
}

// ResolveSources interprets relative source_csv paths against baseDir first,
// falling back to the path as given.
func (c *Config) ResolveSources(baseDir string) {
	for i := range c.Fleets {
		c.Fleets[i].SourceCSV = data.ResolvePath(baseDir, c.Fleets[i].SourceCSV)
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Assumptions(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.SellLagMonths == nil {
		return model.MissingField("sell_lag_months")
	}
	if *c.SellLagMonths < 0 {
		return &model.ConfigError{Field: "sell_lag_months", Reason: "must be >= 0"}
	}
	if len(c.Fleets) == 0 {
		return model.MissingField("fleets")
	}
	seen := map[string]int{}
	for i, f := range c.Fleets {
		prefix := fmt.Sprintf("fleets[%d]", i)
		if j, dup := seen[f.Name]; dup && f.Name != "" {
			return &model.ConfigError{Field: prefix + ".name", Reason: fmt.Sprintf("duplicate of fleets[%d]", j)}
		}
		seen[f.Name] = i
		if _, err := f.Params(prefix, *c.SellLagMonths); err != nil {
			return err
		}
		pm, err := f.Production(prefix)
		if err != nil {
			return err
		}
		if err := pm.Validate(prefix); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Assumptions() (model.Assumptions, error) {
	var a model.Assumptions
	if c.StartMonth == "" {
		return a, model.MissingField("start_month")
	}
	if c.EndMonth == "" {
		return a, model.MissingField("end_month")
	}
	start, err := model.ParseMonth(c.StartMonth)
	if err != nil {
		return a, &model.ConfigError{Field: "start_month", Reason: err.Error()}
	}
	end, err := model.ParseMonth(c.EndMonth)
	if err != nil {
		return a, &model.ConfigError{Field: "end_month", Reason: err.Error()}
	}
	a = model.Assumptions{
		Start:             start,
		End:               end,
		ElecRateUSDPerKWh: DefaultElecRate,
		AnnualElecPct:     c.AnnualPowerPct,
	}
	if c.ElecRateUSDPerKWh != nil {
		a.ElecRateUSDPerKWh = *c.ElecRateUSDPerKWh
	}
	if err := a.Validate(); err != nil {
		return model.Assumptions{}, err
	}
	return a, nil
}

// Policy builds the seasonal policy. operating_months and winter_months are
// aliases and may not both be set. A month list combined with a window
// operates in their union.
func (c *Config) Policy() (policy.Policy, error) {
	if len(c.OperatingMonths) > 0 && len(c.WinterMonths) > 0 {
		return nil, &model.ConfigError{Field: "winter_months", Reason: "contradicts operating_months; set only one"}
	}
	list, listField := c.OperatingMonths, "operating_months"
	if len(list) == 0 {
		list, listField = c.WinterMonths, "winter_months"
	}

	var ps []policy.Policy
	if len(list) > 0 {
		set, err := policy.NewMonthSet(list)
		if err != nil {
			return nil, &model.ConfigError{Field: listField, Reason: err.Error()}
		}
		ps = append(ps, set)
	}
	if c.OperatingWindow != nil {
		w, err := policy.NewWindow(c.OperatingWindow.From, c.OperatingWindow.To)
		if err != nil {
			return nil, &model.ConfigError{Field: "operating_window", Reason: err.Error()}
		}
		ps = append(ps, w)
	}
	switch len(ps) {
	case 0:
		return nil, model.MissingField("operating_months")
	case 1:
		return ps[0], nil
	default:
		return policy.Union(ps...), nil
	}
}

// Params converts the fleet's economic fields. defaultLag applies when the
// fleet does not override sell_lag_months.
func (f FleetConfig) Params(prefix string, defaultLag int) (model.FleetParams, error) {
	switch {
	case f.Name == "":
		return model.FleetParams{}, model.MissingField(prefix + ".name")
	case f.SourceCSV == "":
		return model.FleetParams{}, model.MissingField(prefix + ".source_csv")
	case f.ModelName == "":
		return model.FleetParams{}, model.MissingField(prefix + ".model_name")
	case f.Units == nil:
		return model.FleetParams{}, model.MissingField(prefix + ".units")
	case f.BasePriceUSD == nil:
		return model.FleetParams{}, model.MissingField(prefix + ".base_price_usd")
	}
	field := func(key string) string { return prefix + "." + key }
	switch {
	case *f.Units < 0:
		return model.FleetParams{}, &model.ConfigError{Field: field("units"), Reason: "must be >= 0"}
	case *f.BasePriceUSD < 0 || math.IsNaN(*f.BasePriceUSD):
		return model.FleetParams{}, &model.ConfigError{Field: field("base_price_usd"), Reason: "must be >= 0"}
	case f.AnnualPricePct <= -1 || math.IsNaN(f.AnnualPricePct):
		return model.FleetParams{}, &model.ConfigError{Field: field("annual_price_pct"), Reason: "must be > -1"}
	case f.AnnualDifficultyPct <= -1 || math.IsNaN(f.AnnualDifficultyPct):
		return model.FleetParams{}, &model.ConfigError{Field: field("annual_difficulty_pct"), Reason: "must be > -1"}
	case f.SellLagMonths != nil && *f.SellLagMonths < 0:
		return model.FleetParams{}, &model.ConfigError{Field: field("sell_lag_months"), Reason: "must be >= 0"}
	case f.SellLagMonths == nil && defaultLag < 0:
		return model.FleetParams{}, &model.ConfigError{Field: "sell_lag_months", Reason: "must be >= 0"}
	}
	lag := defaultLag
	if f.SellLagMonths != nil {
		lag = *f.SellLagMonths
	}
	p := model.FleetParams{
		Name:                f.Name,
		Source:              f.SourceCSV,
		ModelName:           f.ModelName,
		Units:               *f.Units,
		BasePriceUSD:        *f.BasePriceUSD,
		AnnualPricePct:      f.AnnualPricePct,
		AnnualDifficultyPct: f.AnnualDifficultyPct,
		SellLagMonths:       lag,
	}
	if err := p.Validate(); err != nil {
		return model.FleetParams{}, &model.ConfigError{Field: prefix, Reason: err.Error()}
	}
	return p, nil
}

// Production selects the fleet's production model:
//   - use_difficulty: true selects difficulty mode
//   - network_hashrate selects network-hashrate mode
//   - baseline_coins_per_day selects a fixed yield
//   - difficulty fields with use_difficulty false or absent select a
//     disabled difficulty model that yields nothing
//
// Selecting more than one of the first three is contradictory.
func (f FleetConfig) Production(prefix string) (network.ProductionModel, error) {
	useDiff := f.UseDifficulty != nil && *f.UseDifficulty
	hasNet := f.NetworkHashrate != nil
	hasFixed := f.BaselineCoinsPerDay != nil

	var selected []string
	if useDiff {
		selected = append(selected, "use_difficulty")
	}
	if hasNet {
		selected = append(selected, "network_hashrate")
	}
	if hasFixed {
		selected = append(selected, "baseline_coins_per_day")
	}
	if len(selected) > 1 {
		return nil, &model.ConfigError{Field: prefix, Reason: "contradictory production settings: " + strings.Join(selected, ", ")}
	}

	switch {
	case useDiff:
		chain, err := f.chain(prefix)
		if err != nil {
			return nil, err
		}
		if f.DifficultyNow == nil {
			return nil, model.MissingField(prefix + ".difficulty_now")
		}
		return network.Difficulty{Chain: chain, Enabled: true, Difficulty: *f.DifficultyNow}, nil
	case hasNet:
		hs, err := parseNetworkHashrate(prefix+".network_hashrate", f.NetworkHashrate)
		if err != nil {
			return nil, err
		}
		chain, err := f.chain(prefix)
		if err != nil {
			return nil, err
		}
		return network.NetworkHashrate{Chain: chain, NetworkHs: hs}, nil
	case hasFixed:
		return network.FixedYield{CoinsPerDay: *f.BaselineCoinsPerDay}, nil
	case f.UseDifficulty != nil || f.DifficultyNow != nil:
		return network.Difficulty{Enabled: false}, nil
	}
	return nil, &model.ConfigError{Field: prefix, Reason: "no production model: set network_hashrate, use_difficulty with difficulty_now, or baseline_coins_per_day"}
}

func (f FleetConfig) chain(prefix string) (network.Chain, error) {
	if f.BlockTimeS == nil {
		return network.Chain{}, model.MissingField(prefix + ".block_time_s")
	}
	if f.BlockReward == nil {
		return network.Chain{}, model.MissingField(prefix + ".block_reward")
	}
	if f.PoolFeePct == nil {
		return network.Chain{}, model.MissingField(prefix + ".pool_fee_pct")
	}
	return network.Chain{BlockTimeS: *f.BlockTimeS, BlockReward: *f.BlockReward, PoolFee: *f.PoolFeePct}, nil
}

// parseNetworkHashrate accepts whatever the decoders produce for the key:
// a string with an optional unit, or a number already in H/s.
func parseNetworkHashrate(field string, v any) (float64, error) {
	var hs float64
	switch x := v.(type) {
	case string:
		parsed, err := network.ParseHashrate(x)
		if err != nil {
			return 0, &model.ConfigError{Field: field, Reason: err.Error()}
		}
		hs = parsed
	case int:
		hs = float64(x)
	case int64:
		hs = float64(x)
	case uint64:
		hs = float64(x)
	case float64:
		hs = x
	default:
		return 0, &model.ConfigError{Field: field, Reason: fmt.Sprintf("unsupported value of type %T", v)}
	}
	if math.IsNaN(hs) || math.IsInf(hs, 0) || hs < 0 {
		return 0, &model.ConfigError{Field: field, Reason: "must be a finite value >= 0"}
	}
	return hs, nil
}

// Inputs validates c, resolves every fleet's miner spec through tables
// and returns the engine inputs. A nil loader reads tables from disk.
func (c *Config) Inputs(tables TableLoader) (projection.Inputs, error) {
	if err := c.Validate(); err != nil {
		return projection.Inputs{}, err
	}
	if tables == nil {
		tables = (*data.TableCache)(nil)
	}
	a, _ := c.Assumptions()
	pol, _ := c.Policy()
	in := projection.Inputs{Assumptions: a, Policy: pol}
	for i, f := range c.Fleets {
		prefix := fmt.Sprintf("fleets[%d]", i)
		params, _ := f.Params(prefix, *c.SellLagMonths)
		pm, _ := f.Production(prefix)

		t, err := tables.Load(f.SourceCSV)
		if err != nil {
			return projection.Inputs{}, fmt.Errorf("%s.source_csv: %w", prefix, err)
		}
		s, err := spec.Resolve(t, f.ModelName)
		if err != nil {
			return projection.Inputs{}, fmt.Errorf("%s: %w", prefix, err)
		}
		in.Fleets = append(in.Fleets, projection.Fleet{Params: params, Spec: s, Production: pm})
	}
	return in, nil
}
