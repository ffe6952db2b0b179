package model

// OperatingState is the human-friendly operating mode for a month.
// Keep these values stable; they are intended for CSV output.
type OperatingState string

const (
	StateMining OperatingState = "MINING"
	StateIdle   OperatingState = "IDLE"
)

func StateFromOperating(operating bool) OperatingState {
	if operating {
		return StateMining
	}
	return StateIdle
}
