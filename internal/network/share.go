package network

import "mining-pnl/internal/model"

const (
	secondsPerDay = 86400.0
	// two32 is the expected hashes per unit of difficulty for a 32-bit nonce space.
	two32 = 4294967296.0
)

// FleetHashrate returns the aggregate hashrate of units miners in H/s.
func FleetHashrate(units int, spec model.MinerSpec) float64 {
	return float64(units) * spec.HashrateHs()
}

// HashrateFromDifficulty converts a difficulty and target block time into
// network hashrate (H/s): difficulty * 2^32 / block_time.
func HashrateFromDifficulty(difficulty, blockTimeS float64) float64 {
	if blockTimeS <= 0 {
		return 0
	}
	return difficulty * two32 / blockTimeS
}

// Share is the fleet's fraction of network work. A non-positive network
// hashrate yields 0 rather than Inf or NaN.
func Share(fleetHs, networkHs float64) float64 {
	if networkHs <= 0 {
		return 0
	}
	return fleetHs / networkHs
}

// DailyCoins is share * blocks/day * reward, net of the pool fee.
func DailyCoins(share, blockTimeS, blockReward, poolFee float64) float64 {
	if blockTimeS <= 0 {
		return 0
	}
	blocksPerDay := secondsPerDay / blockTimeS
	return share * blocksPerDay * blockReward * (1 - poolFee)
}
