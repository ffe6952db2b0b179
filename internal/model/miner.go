package model

import "strings"

// HashrateUnit is the unit a per-unit hashrate is expressed in.
// Keep these values stable; they are written to CSV output.
type HashrateUnit string

const (
	UnitHps  HashrateUnit = "H/s"
	UnitGHps HashrateUnit = "GH/s"
	UnitTHps HashrateUnit = "TH/s"
	UnitPHps HashrateUnit = "PH/s"
	UnitEHps HashrateUnit = "EH/s"
)

// Scale returns the multiplier that converts a value in u to H/s.
// Unrecognised units are treated as already being H/s.
func (u HashrateUnit) Scale() float64 {
	switch HashrateUnit(strings.ToUpper(string(u))) {
	case "GH/S":
		return 1e9
	case "TH/S":
		return 1e12
	case "PH/S":
		return 1e15
	case "EH/S":
		return 1e18
	default:
		return 1
	}
}

// MinerSpec is the resolved physical description of one mining unit.
type MinerSpec struct {
	Model        string
	Hashrate     float64
	HashrateUnit HashrateUnit
	PowerW       float64
}

// HashrateHs returns the per-unit hashrate in H/s.
func (s MinerSpec) HashrateHs() float64 {
	return s.Hashrate * s.HashrateUnit.Scale()
}

// ReferenceTable is a raw miner reference sheet: a header plus string rows.
type ReferenceTable struct {
	Source string
	Header []string
	Rows   [][]string
}
