package internal

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportJSON reads subscriptions from a JSON file. Two layouts are accepted:
// the stored list itself
//
//	[
//	  {"id": "a1", "name": "Netflix", "amount": 12.99, "cycle": "monthly", "startDate": "2025-01-15", "active": true}
//	]
//
// and an object wrapping it
//
//	{"subscriptions": [ ... ]}
//
// Records are normalized like stored ones; records without an id get a new one.
func ImportJSON(path string) ([]Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["subscriptions"].([]any)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: missing \"subscriptions\" array")
		}
		items = list
	default:
		return nil, fmt.Errorf("parsing JSON: expected an array or an object")
	}

	var subs []Subscription
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected an object", i)
		}
		subs = append(subs, ensureID(NormalizeSubscription(obj)))
	}
	return subs, nil
}
