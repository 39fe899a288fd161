package internal

import "time"

// NextBillingDate computes the next billing date of a subscription relative to today.
// Returns false when the start date is missing or malformed.
//
// Monthly subscriptions with a billing day use the earliest billing-day date on or
// after today that is not before the start date. Every other case steps from the
// start date by whole cycles until the result is strictly after today; a start date
// in the future is returned as is.
func NextBillingDate(sub Subscription, today time.Time) (time.Time, bool) {
	today = StartOfDay(today)
	start, ok := ParseISODateIn(sub.StartDate, today.Location())
	if !ok {
		return time.Time{}, false
	}

	cycle := sub.Cycle
	if cycle == "" {
		cycle = CycleMonthly
	}

	if cycle == CycleMonthly && sub.BillingDay != nil && *sub.BillingDay > 0 {
		return nextMonthlyBillingDay(start, *sub.BillingDay, today), true
	}
	return nextByCycle(start, cycle, today), true
}

// nextMonthlyBillingDay pins billing to a fixed day of month. Days past the end of a
// month are clamped to its last day.
func nextMonthlyBillingDay(start time.Time, billingDay int, today time.Time) time.Time {
	year, month, _ := today.Date()
	loc := today.Location()

	candidate := dateClamped(year, month, billingDay, loc)
	if candidate.Before(today) {
		month++
		candidate = dateClamped(year, month, billingDay, loc)
	}
	for candidate.Before(start) {
		month++
		candidate = dateClamped(year, month, billingDay, loc)
	}
	return candidate
}

// nextByCycle returns the first start + k*cycle strictly after today (k >= 0).
// Month based cycles are anchored on the start date so a day that does not exist in
// a month is clamped for that month only.
func nextByCycle(start time.Time, cycle Cycle, today time.Time) time.Time {
	if start.After(today) {
		return start
	}

	switch cycle {
	case CycleDaily:
		return nextByDays(start, 1, today)
	case CycleWeekly:
		return nextByDays(start, 7, today)
	case CycleQuarterly:
		return nextByMonths(start, 3, today)
	case CycleYearly:
		return nextByMonths(start, 12, today)
	default:
		return nextByMonths(start, 1, today)
	}
}

func nextByDays(start time.Time, step int, today time.Time) time.Time {
	steps := daysBetween(start, today)/step + 1
	return AddDays(start, steps*step)
}

func nextByMonths(start time.Time, step int, today time.Time) time.Time {
	// Begin one step early so the first candidate is never past the answer.
	k := monthsBetween(start, today)/step - 1
	if k < 1 {
		k = 1
	}
	next := addMonthsClamped(start, k*step)
	for !next.After(today) {
		k++
		next = addMonthsClamped(start, k*step)
	}
	return next
}

// NextRenewalDate returns the subscription's end date when it lies strictly after
// today. Contracts that end today or earlier have no renewal date.
func NextRenewalDate(sub Subscription, today time.Time) (time.Time, bool) {
	today = StartOfDay(today)
	end, ok := ParseISODateIn(sub.EndDate, today.Location())
	if !ok || !end.After(today) {
		return time.Time{}, false
	}
	return end, true
}
