package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func init() {
	RegisterImporter("test-format", ImporterFunc(func(path string) ([]Subscription, error) {
		return []Subscription{{Name: path}}, nil
	}), ".testfmt")
}

func TestIsKnownFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"known format", "test-format", true},
		{"built-in json", "json", true},
		{"built-in xlsx", "xlsx", true},
		{"unknown format", "unknown-format", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsKnownFormat(tt.input)
			if got != tt.expected {
				t.Errorf("IsKnownFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFileArg(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedFormat string
		expectedPath   string
	}{
		{
			name:           "with known format prefix",
			input:          "test-format:data.json",
			expectedFormat: "test-format",
			expectedPath:   "data.json",
		},
		{
			name:           "with built-in format prefix",
			input:          "xlsx:subs.xlsx",
			expectedFormat: "xlsx",
			expectedPath:   "subs.xlsx",
		},
		{
			name:           "no prefix",
			input:          "data.json",
			expectedFormat: "",
			expectedPath:   "data.json",
		},
		{
			name:           "unknown prefix treated as path",
			input:          "unknown:data.json",
			expectedFormat: "",
			expectedPath:   "unknown:data.json",
		},
		{
			name:           "windows path with drive letter",
			input:          "C:\\Users\\test\\data.xlsx",
			expectedFormat: "",
			expectedPath:   "C:\\Users\\test\\data.xlsx",
		},
		{
			name:           "format prefix with absolute path",
			input:          "json:/home/user/export.txt",
			expectedFormat: "json",
			expectedPath:   "/home/user/export.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFormat, gotPath := ParseFileArg(tt.input)
			if gotFormat != tt.expectedFormat {
				t.Errorf("ParseFileArg(%q) format = %q, want %q", tt.input, gotFormat, tt.expectedFormat)
			}
			if gotPath != tt.expectedPath {
				t.Errorf("ParseFileArg(%q) path = %q, want %q", tt.input, gotPath, tt.expectedPath)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"subs.json", "json", false},
		{"SUBS.XLSX", "xlsx", false},
		{"dir/file.testfmt", "test-format", false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("FormatForPath(%q) error = %v, want ErrUnknownFormat", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestImportFile_Dispatch(t *testing.T) {
	subs, err := ImportFile("test-format:whatever")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Name != "whatever" {
		t.Errorf("ImportFile = %+v", subs)
	}

	if _, err := ImportFile("data.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ImportFile(csv) error = %v, want ErrUnknownFormat", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportJSON(t *testing.T) {
	path := writeFile(t, "subs.json", `[
		{"id": "a1", "name": "Netflix", "amount": 12.99, "cycle": "monthly", "startDate": "2025-01-15", "active": true},
		{"name": "Domain", "amount": "15,00", "cycle": "yearly", "active": true, "reminderConfig": {"mode": "off"}}
	]`)

	subs, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d subscriptions, want 2", len(subs))
	}
	if subs[0].ID != "a1" || subs[0].Amount != 12.99 || subs[0].ReminderConfig.Mode != ReminderModeDefault {
		t.Errorf("first = %+v", subs[0])
	}
	if subs[1].ID == "" {
		t.Error("missing id was not generated")
	}
	if subs[1].Amount != 15 || subs[1].ReminderConfig.Mode != ReminderModeOff {
		t.Errorf("second = %+v", subs[1])
	}
}

func TestImportJSON_Layouts(t *testing.T) {
	wrapped := writeFile(t, "wrapped.json", `{"subscriptions": [{"id": "x", "name": "Gym", "active": true}]}`)
	subs, err := ImportJSON(wrapped)
	if err != nil || len(subs) != 1 || subs[0].Name != "Gym" {
		t.Errorf("wrapped layout: %+v, %v", subs, err)
	}

	bad := []struct {
		name    string
		content string
	}{
		{"not json", `{`},
		{"scalar", `42`},
		{"object without list", `{"items": []}`},
		{"non-object entry", `[{"name": "ok"}, "oops"]`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportJSON(writeFile(t, "bad.json", tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "subs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"My subscriptions"},
		{},
		{"Name", "Price", "Cycle", "Start date", "Billing day", "End", "Active", "Category"},
		{"Netflix", 12.99, "Monthly", "2025-01-15", 15, "", "yes", "Streaming"},
		{"Domain", "15,00", "yearly", 45672, "", "2026-01-01", "no", ""},
		{"", 3, "weekly"},
		{"Cloud", 2.5, "", "2025-02-01 00:00:00"},
	})

	subs, err := ImportXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 3 {
		t.Fatalf("got %d subscriptions, want 3: %+v", len(subs), subs)
	}

	netflix := subs[0]
	if netflix.Name != "Netflix" || netflix.Amount != 12.99 || netflix.Cycle != CycleMonthly {
		t.Errorf("netflix = %+v", netflix)
	}
	if netflix.StartDate != "2025-01-15" || netflix.BillingDay == nil || *netflix.BillingDay != 15 {
		t.Errorf("netflix dates = %s/%v", netflix.StartDate, netflix.BillingDay)
	}
	if !netflix.Active || netflix.Category != "Streaming" || netflix.ID == "" {
		t.Errorf("netflix = %+v", netflix)
	}

	domain := subs[1]
	if domain.Amount != 15 || domain.Cycle != CycleYearly || domain.Active {
		t.Errorf("domain = %+v", domain)
	}
	if domain.StartDate != "2025-01-15" || domain.EndDate != "2026-01-01" {
		t.Errorf("domain dates = %s/%s", domain.StartDate, domain.EndDate)
	}

	cloud := subs[2]
	if cloud.Cycle != CycleMonthly || cloud.StartDate != "2025-02-01" || !cloud.Active {
		t.Errorf("cloud = %+v", cloud)
	}
	if subs[0].ID == subs[1].ID {
		t.Error("generated ids must be unique")
	}
}

func TestImportXLSX_MissingColumns(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Name", "Cycle"},
		{"Netflix", "monthly"},
	})
	if _, err := ImportXLSX(path); err == nil {
		t.Error("expected error when the Amount column is missing")
	}
}

func TestXLSXActive(t *testing.T) {
	for _, s := range []string{"", "yes", "Active", "1", "x"} {
		if !xlsxActive(s) {
			t.Errorf("xlsxActive(%q) = false", s)
		}
	}
	for _, s := range []string{"no", "FALSE", "0", "inactive", "n"} {
		if xlsxActive(s) {
			t.Errorf("xlsxActive(%q) = true", s)
		}
	}
}

func TestMergeSubscriptions(t *testing.T) {
	existing := []Subscription{
		{ID: "a", Name: "Netflix"},
		{ID: "b", Name: "Gym"},
	}
	imported := []Subscription{
		{ID: "b", Name: "Gym Premium"},
		{ID: "c", Name: "News"},
		{Name: "No id"},
	}

	merged, replaced := MergeSubscriptions(existing, imported)
	if replaced != 1 {
		t.Errorf("replaced = %d, want 1", replaced)
	}
	if len(merged) != 4 {
		t.Fatalf("len = %d, want 4", len(merged))
	}
	if merged[1].Name != "Gym Premium" || merged[2].ID != "c" {
		t.Errorf("merged = %+v", merged)
	}
	if merged[3].ID == "" {
		t.Error("entry without id did not get one")
	}
	if existing[1].Name != "Gym" {
		t.Error("existing slice was modified")
	}
}
