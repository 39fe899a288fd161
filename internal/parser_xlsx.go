package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxColumns maps lower-cased header cells to subscription fields
var xlsxColumns = map[string]string{
	"name":        "name",
	"provider":    "provider",
	"category":    "category",
	"note":        "note",
	"amount":      "amount",
	"price":       "amount",
	"cycle":       "cycle",
	"start":       "startDate",
	"start date":  "startDate",
	"billing day": "billingDay",
	"end":         "endDate",
	"end date":    "endDate",
	"active":      "active",
	"debit":       "debit",
	"id":          "id",
}

// ImportXLSX reads subscriptions from the first sheet of an Excel workbook.
// The header row is the first row containing both a "Name" and an "Amount"
// column; rows above it are ignored. Missing cycles default to monthly and a
// missing or empty "Active" cell means active.
func ImportXLSX(path string) ([]Subscription, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	// Find header row and column indices
	cols := map[string]int{}
	dataStartRow := -1
	for i, row := range rows {
		found := map[string]int{}
		for j, cell := range row {
			if field, ok := xlsxColumns[strings.ToLower(strings.TrimSpace(cell))]; ok {
				if _, dup := found[field]; !dup {
					found[field] = j
				}
			}
		}
		_, hasName := found["name"]
		_, hasAmount := found["amount"]
		if hasName && hasAmount {
			cols = found
			dataStartRow = i + 1
			break
		}
	}
	if dataStartRow < 0 {
		return nil, fmt.Errorf("could not find required columns (Name, Amount)")
	}

	var subs []Subscription
	for i := dataStartRow; i < len(rows); i++ {
		row := rows[i]
		cell := func(field string) string {
			j, ok := cols[field]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		// Skip empty rows
		if cell("name") == "" {
			continue
		}

		raw := map[string]any{
			"id":       cell("id"),
			"name":     cell("name"),
			"provider": cell("provider"),
			"category": cell("category"),
			"note":     cell("note"),
			"amount":   cell("amount"),
			"cycle":    xlsxCycle(cell("cycle")),
			"debit":    strings.ToLower(cell("debit")),
			"active":   xlsxActive(cell("active")),
		}
		if day := cell("billingDay"); day != "" {
			raw["billingDay"] = day
		}
		if d, ok := xlsxDate(cell("startDate")); ok {
			raw["startDate"] = d
		}
		if d, ok := xlsxDate(cell("endDate")); ok {
			raw["endDate"] = d
		}

		subs = append(subs, ensureID(NormalizeSubscription(raw)))
	}

	return subs, nil
}

func xlsxCycle(s string) string {
	if s == "" {
		return string(CycleMonthly)
	}
	return strings.ToLower(s)
}

func xlsxActive(s string) bool {
	switch strings.ToLower(s) {
	case "no", "false", "0", "inactive", "n":
		return false
	default:
		return true
	}
}

// xlsxDate accepts ISO dates (optionally followed by a time) and Excel date serials
func xlsxDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if len(s) >= 10 {
		if t, ok := ParseISODate(s[:10]); ok {
			return FormatISODate(t), true
		}
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	return FormatISODate(t), true
}
