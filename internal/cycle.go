package internal

import "math"

// averageMonthDays is the mean month length of the Gregorian calendar
const averageMonthDays = 30.4375

// ToMonthly converts an amount billed per cycle into a monthly amount.
// Unknown cycles are treated as monthly; non-finite amounts count as 0.
func ToMonthly(amount float64, cycle Cycle) float64 {
	a := finiteOrZero(amount)
	switch cycle {
	case CycleYearly:
		return a / 12
	case CycleWeekly:
		return a * 52 / 12
	case CycleQuarterly:
		return a / 3
	case CycleDaily:
		return a * averageMonthDays
	default:
		return a
	}
}

// FromMonthly is the inverse of ToMonthly for the target cycle
func FromMonthly(monthly float64, target Cycle) float64 {
	m := finiteOrZero(monthly)
	switch target {
	case CycleYearly:
		return m * 12
	case CycleWeekly:
		return m * 12 / 52
	case CycleQuarterly:
		return m * 3
	case CycleDaily:
		return m / averageMonthDays
	default:
		return m
	}
}

// ToDisplayUnit converts an amount from one billing cycle to another
func ToDisplayUnit(amount float64, from, to Cycle) float64 {
	return FromMonthly(ToMonthly(amount, from), to)
}

// CycleLabel returns the adjective used in reminder texts ("monthly").
// Unknown cycles are shown as stored.
func CycleLabel(c Cycle) string {
	if c == "" {
		return string(CycleMonthly)
	}
	return string(c)
}

// CycleUnitLabel returns the noun for a display unit ("month")
func CycleUnitLabel(c Cycle) string {
	switch c {
	case CycleYearly:
		return "year"
	case CycleWeekly:
		return "week"
	case CycleQuarterly:
		return "quarter"
	case CycleDaily:
		return "day"
	default:
		return "month"
	}
}

// ParseDisplayCycle returns the cycle for a display unit, defaulting to monthly
func ParseDisplayCycle(s string) Cycle {
	c := Cycle(s)
	if c.IsValid() {
		return c
	}
	return CycleMonthly
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
