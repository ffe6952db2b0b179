package network

import (
	"fmt"
	"math"

	"mining-pnl/internal/model"
)

// Mode names a production model. Keep these values stable; they appear in
// API responses and logs.
type Mode string

const (
	ModeNetworkHashrate Mode = "network_hashrate"
	ModeDifficulty      Mode = "difficulty"
	ModeFixedYield      Mode = "fixed_yield"
)

// ProductionModel turns a fleet hashrate into a baseline coins/day figure at
// the start of the horizon. Difficulty growth is applied by the projector.
type ProductionModel interface {
	Mode() Mode
	DailyYield(fleetHs float64) float64
	// Validate checks the model's required parameters. prefix is the config
	// key path of the owning fleet, e.g. "fleets[0]".
	Validate(prefix string) error
}

// Chain holds the block parameters both share-based modes need.
type Chain struct {
	BlockTimeS  float64
	BlockReward float64
	PoolFee     float64
}

func (c Chain) validate(prefix string) error {
	if !(c.BlockTimeS > 0) {
		return &model.ConfigError{Field: prefix + ".block_time_s", Reason: "must be > 0"}
	}
	if c.BlockReward < 0 || math.IsNaN(c.BlockReward) {
		return &model.ConfigError{Field: prefix + ".block_reward", Reason: "must be >= 0"}
	}
	if c.PoolFee < 0 || c.PoolFee >= 1 || math.IsNaN(c.PoolFee) {
		return &model.ConfigError{Field: prefix + ".pool_fee_pct", Reason: "must be in [0, 1)"}
	}
	return nil
}

// NetworkHashrate derives share from a stated network hashrate.
type NetworkHashrate struct {
	Chain
	NetworkHs float64
}

func (NetworkHashrate) Mode() Mode { return ModeNetworkHashrate }

func (n NetworkHashrate) DailyYield(fleetHs float64) float64 {
	return DailyCoins(Share(fleetHs, n.NetworkHs), n.BlockTimeS, n.BlockReward, n.PoolFee)
}

func (n NetworkHashrate) Validate(prefix string) error {
	if n.NetworkHs < 0 || math.IsNaN(n.NetworkHs) || math.IsInf(n.NetworkHs, 0) {
		return &model.ConfigError{Field: prefix + ".network_hashrate", Reason: "must be a finite value >= 0"}
	}
	return n.Chain.validate(prefix)
}

// Difficulty derives network hashrate from difficulty and block time.
//
// When Enabled is false DailyYield is 0: the caller is expected to choose
// another mode instead of stacking two sets of assumptions. The projector
// reports this as a warning.
type Difficulty struct {
	Chain
	Enabled    bool
	Difficulty float64
}

func (Difficulty) Mode() Mode { return ModeDifficulty }

func (d Difficulty) DailyYield(fleetHs float64) float64 {
	if !d.Enabled {
		return 0
	}
	net := HashrateFromDifficulty(d.Difficulty, d.BlockTimeS)
	return DailyCoins(Share(fleetHs, net), d.BlockTimeS, d.BlockReward, d.PoolFee)
}

func (d Difficulty) Validate(prefix string) error {
	if !d.Enabled {
		return nil
	}
	if d.Difficulty < 0 || math.IsNaN(d.Difficulty) || math.IsInf(d.Difficulty, 0) {
		return &model.ConfigError{Field: prefix + ".difficulty_now", Reason: "must be a finite value >= 0"}
	}
	return d.Chain.validate(prefix)
}

// FixedYield supplies coins/day directly, independent of hashrate.
type FixedYield struct {
	CoinsPerDay float64
}

func (FixedYield) Mode() Mode { return ModeFixedYield }

func (f FixedYield) DailyYield(float64) float64 { return f.CoinsPerDay }

func (f FixedYield) Validate(prefix string) error {
	if f.CoinsPerDay < 0 || math.IsNaN(f.CoinsPerDay) || math.IsInf(f.CoinsPerDay, 0) {
		return &model.ConfigError{Field: prefix + ".baseline_coins_per_day", Reason: "must be a finite value >= 0"}
	}
	return nil
}

// DisabledReason returns a non-empty diagnostic when pm can never produce
// coins because difficulty mode was selected but switched off.
func DisabledReason(pm ProductionModel) string {
	d, ok := pm.(Difficulty)
	if !ok || d.Enabled {
		return ""
	}
	return fmt.Sprintf("%s mode selected but use_difficulty is false; daily yield is 0", ModeDifficulty)
}
