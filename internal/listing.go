package internal

import (
	"sort"
	"strings"
)

// Status filters
const (
	StatusAll      = "all"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// CategoryNone selects subscriptions without a category
const CategoryNone = "none"

// Sort fields
const (
	SortByName  = "name"
	SortByPrice = "price"
)

// ListOptions controls which subscriptions are listed and in what order
type ListOptions struct {
	Status       string // all | active | inactive
	Cycle        string // all | a cycle name
	Category     string // all | none | a category
	Search       string // case-insensitive substring of name, provider, category or note
	SortField    string // name | price
	SortDir      string // asc | desc
	DisplayCycle Cycle  // unit used for price sorting
}

// ListSubscriptions filters and sorts subs. The input slice is not modified.
func ListSubscriptions(subs []Subscription, opts ListOptions) []Subscription {
	result := FilterByStatus(subs, opts.Status)
	result = FilterByCycle(result, opts.Cycle)
	result = FilterByCategory(result, opts.Category)
	result = FilterBySearch(result, opts.Search)

	sorted := make([]Subscription, len(result))
	copy(sorted, result)
	SortSubscriptions(sorted, opts.SortField, opts.SortDir, opts.DisplayCycle)
	return sorted
}

// FilterByStatus filters subscriptions by status (active/inactive/all)
func FilterByStatus(subs []Subscription, status string) []Subscription {
	if status == "" || status == StatusAll {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		if status == StatusActive && sub.Active {
			result = append(result, sub)
		} else if status == StatusInactive && !sub.Active {
			result = append(result, sub)
		}
	}
	return result
}

// FilterByCycle keeps subscriptions billed in the given cycle
func FilterByCycle(subs []Subscription, cycle string) []Subscription {
	if cycle == "" || cycle == StatusAll {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		if string(sub.Cycle) == cycle {
			result = append(result, sub)
		}
	}
	return result
}

// FilterByCategory keeps subscriptions of one category; "none" selects those without
func FilterByCategory(subs []Subscription, category string) []Subscription {
	if category == "" || category == StatusAll {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		if category == CategoryNone && sub.Category == "" {
			result = append(result, sub)
		} else if sub.Category == category {
			result = append(result, sub)
		}
	}
	return result
}

// FilterBySearch keeps subscriptions whose text fields contain term
func FilterBySearch(subs []Subscription, term string) []Subscription {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		haystack := strings.ToLower(strings.Join([]string{sub.Name, sub.Provider, sub.Category, sub.Note}, " "))
		if strings.Contains(haystack, term) {
			result = append(result, sub)
		}
	}
	return result
}

// FilterByExclusions removes subscriptions matching exclusion rules
func FilterByExclusions(subs []Subscription, cfg *Config) []Subscription {
	if cfg == nil {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		if !cfg.ShouldExclude(sub) {
			result = append(result, sub)
		}
	}
	return result
}

// SortSubscriptions sorts in place by name (case-insensitive) or by price in the
// display unit. Equal keys keep their relative order.
func SortSubscriptions(subs []Subscription, field, dir string, display Cycle) {
	sort.SliceStable(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		if field == SortByPrice {
			pa := ToDisplayUnit(a.Amount, a.Cycle, display)
			pb := ToDisplayUnit(b.Amount, b.Cycle, display)
			if dir == "desc" {
				return pa > pb
			}
			return pa < pb
		}

		na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if dir == "desc" {
			return na > nb
		}
		return na < nb
	})
}

// TotalActive sums the amounts of all active subscriptions in the display unit
func TotalActive(subs []Subscription, display Cycle) float64 {
	var total float64
	for _, sub := range subs {
		if sub.Active {
			total += ToDisplayUnit(sub.Amount, sub.Cycle, display)
		}
	}
	return total
}

// Categories returns the distinct non-empty categories, sorted
func Categories(subs []Subscription) []string {
	seen := make(map[string]bool)
	var cats []string
	for _, sub := range subs {
		if sub.Category != "" && !seen[sub.Category] {
			seen[sub.Category] = true
			cats = append(cats, sub.Category)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		return strings.ToLower(cats[i]) < strings.ToLower(cats[j])
	})
	return cats
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
