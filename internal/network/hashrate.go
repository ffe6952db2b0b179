package network

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"mining-pnl/internal/model"
)

var hashrateStringPattern = regexp.MustCompile(`^([+-]?[0-9][0-9_,]*\.?[0-9]*(?:[eE][+-]?[0-9]+)?|[+-]?\.[0-9]+(?:[eE][+-]?[0-9]+)?)\s*(.*)$`)

var prefixScale = map[string]float64{
	"":  1,
	"K": 1e3,
	"M": 1e6,
	"G": 1e9,
	"T": 1e12,
	"P": 1e15,
	"E": 1e18,
}

// ParseHashrate accepts strings such as "650 EH/s", "1.2PH/s" or "4.5e20"
// and returns H/s. A bare number is already H/s.
func ParseHashrate(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, errors.New("hashrate string must not be empty")
	}
	match := hashrateStringPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return 0, fmt.Errorf("unrecognised hashrate format: %q", input)
	}
	magnitude := strings.NewReplacer("_", "", ",", "").Replace(match[1])
	value, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hashrate magnitude: %w", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New("hashrate magnitude must be finite")
	}
	if value < 0 {
		return 0, errors.New("hashrate must be >= 0")
	}
	scale, err := unitScale(match[2])
	if err != nil {
		return 0, err
	}
	return value * scale, nil
}

// unitScale resolves a unit token like "EH/s", "th/s", "GH" or "H/s".
func unitScale(unit string) (float64, error) {
	u := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(unit), " ", ""))
	if u == "" {
		return 1, nil
	}
	u = strings.TrimSuffix(u, "/S")
	u = strings.TrimSuffix(u, "PS")
	if !strings.HasSuffix(u, "H") {
		return 0, fmt.Errorf("unrecognised hashrate unit: %q", unit)
	}
	scale, ok := prefixScale[strings.TrimSuffix(u, "H")]
	if !ok {
		return 0, fmt.Errorf("unrecognised hashrate unit: %q", unit)
	}
	return scale, nil
}

var humanUnits = []model.HashrateUnit{model.UnitHps, "kH/s", "MH/s", model.UnitGHps, model.UnitTHps, model.UnitPHps, model.UnitEHps}

// Humanise renders H/s with an SI-prefixed unit, e.g. "650 EH/s".
func Humanise(hs float64) string {
	if math.IsNaN(hs) || math.IsInf(hs, 0) || hs <= 0 {
		return "0 H/s"
	}
	index := int(math.Max(0, math.Floor(math.Log10(hs)/3)))
	if index >= len(humanUnits) {
		index = len(humanUnits) - 1
	}
	scaled := hs / math.Pow(1000, float64(index))
	switch {
	case scaled >= 100:
		return fmt.Sprintf("%.0f %s", scaled, humanUnits[index])
	case scaled >= 10:
		return fmt.Sprintf("%.1f %s", scaled, humanUnits[index])
	default:
		return fmt.Sprintf("%.2f %s", scaled, humanUnits[index])
	}
}
