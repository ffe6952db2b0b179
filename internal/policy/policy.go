package policy

import (
	"fmt"
	"strings"
	"time"

	"mining-pnl/internal/model"
)

// Policy decides whether fleets run in a given month. Outside operating
// months a fleet mines nothing and draws no power.
type Policy interface {
	Name() string
	Operating(m model.Month) bool
}

// MonthSet operates in an explicit set of calendar months.
type MonthSet struct {
	months [13]bool
}

// NewMonthSet builds a set from month numbers 1..12. Duplicates are ignored.
func NewMonthSet(months []int) (*MonthSet, error) {
	if len(months) == 0 {
		return nil, fmt.Errorf("operating month set is empty")
	}
	s := &MonthSet{}
	for _, m := range months {
		if m < 1 || m > 12 {
			return nil, fmt.Errorf("invalid month %d, expected 1..12", m)
		}
		s.months[m] = true
	}
	return s, nil
}

func (s *MonthSet) Name() string { return "months" }

func (s *MonthSet) Operating(m model.Month) bool {
	return s.months[m.Month]
}

// Months returns the set in ascending order.
func (s *MonthSet) Months() []int {
	out := make([]int, 0, 12)
	for m := 1; m <= 12; m++ {
		if s.months[m] {
			out = append(out, m)
		}
	}
	return out
}

func (s *MonthSet) String() string {
	names := make([]string, 0, 12)
	for _, m := range s.Months() {
		names = append(names, time.Month(m).String()[:3])
	}
	return strings.Join(names, ",")
}

// Window operates from From through To inclusive on a 12-month clock.
// If From > To it wraps across the year end (10..4 = Oct..Apr).
type Window struct {
	From int
	To   int
}

func NewWindow(from, to int) (*Window, error) {
	if from < 1 || from > 12 || to < 1 || to > 12 {
		return nil, fmt.Errorf("invalid window %d..%d, expected months 1..12", from, to)
	}
	return &Window{From: from, To: to}, nil
}

func (w *Window) Name() string { return "window" }

func (w *Window) Operating(m model.Month) bool {
	return inWindow(int(m.Month), w.From, w.To)
}

func (w *Window) String() string { return w.MonthSet().String() }

// MonthSet expands the window into the equivalent explicit set.
func (w *Window) MonthSet() *MonthSet {
	s := &MonthSet{}
	for m := 1; m <= 12; m++ {
		s.months[m] = inWindow(m, w.From, w.To)
	}
	return s
}

// inWindow checks whether m is in [from, to] on a 12-month clock.
func inWindow(m, from, to int) bool {
	if from <= to {
		return m >= from && m <= to
	}
	// wrap
	return m >= from || m <= to
}

// Union operates whenever any member policy does.
func Union(ps ...Policy) Policy {
	s := &MonthSet{}
	for m := 1; m <= 12; m++ {
		mo := model.Month{Year: 2000, Month: time.Month(m)}
		for _, p := range ps {
			if p != nil && p.Operating(mo) {
				s.months[m] = true
				break
			}
		}
	}
	return s
}
