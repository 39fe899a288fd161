package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// OutputOptions controls how subscriptions are displayed
type OutputOptions struct {
	DisplayCycle Cycle
	Currency     Currency
	Today        time.Time
	Filter       string // human readable description of the active filters
}

// JSONOutput is the root JSON output object of the list action
type JSONOutput struct {
	Subscriptions []JSONSubscription `json:"subscriptions"`
	Summary       JSONSummary        `json:"summary"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count        int     `json:"count"`
	ActiveCount  int     `json:"active_count"`
	DisplayCycle string  `json:"display_cycle"`
	ActiveTotal  float64 `json:"active_total"`
	Currency     string  `json:"currency"`
}

// JSONSubscription is the JSON output format for a subscription
type JSONSubscription struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Category        string  `json:"category,omitempty"`
	Active          bool    `json:"active"`
	Cycle           string  `json:"cycle"`
	Amount          float64 `json:"amount"`
	DisplayAmount   float64 `json:"display_amount"`
	NextBillingDate string  `json:"next_billing_date,omitempty"`
	EndDate         string  `json:"end_date,omitempty"`
	ReminderMode    string  `json:"reminder_mode"`
	SnoozedUntil    string  `json:"snoozed_until,omitempty"`
}

// PrintSubscriptionsJSON outputs subscriptions in JSON format. The summary total
// covers all active subscriptions in allSubs, not only the displayed ones.
func PrintSubscriptionsJSON(w io.Writer, allSubs, displaySubs []Subscription, opts OutputOptions, cfg *Config) error {
	subscriptions := make([]JSONSubscription, 0, len(displaySubs))
	for _, sub := range displaySubs {
		next := ""
		if d, ok := NextBillingDate(sub, opts.Today); ok {
			next = FormatISODate(d)
		}
		subscriptions = append(subscriptions, JSONSubscription{
			ID:              sub.ID,
			Name:            sub.Name,
			Description:     cfg.GetDescription(sub.Name),
			Provider:        sub.Provider,
			Category:        sub.Category,
			Active:          sub.Active,
			Cycle:           CycleLabel(sub.Cycle),
			Amount:          sub.Amount,
			DisplayAmount:   ToDisplayUnit(sub.Amount, sub.Cycle, opts.DisplayCycle),
			NextBillingDate: next,
			EndDate:         sub.EndDate,
			ReminderMode:    string(EffectiveReminderConfig(sub, ReminderSettings{}).Mode),
			SnoozedUntil:    sub.ReminderState.SnoozedUntil,
		})
	}

	output := JSONOutput{
		Subscriptions: subscriptions,
		Summary: JSONSummary{
			Count:        len(subscriptions),
			ActiveCount:  len(FilterByStatus(allSubs, StatusActive)),
			DisplayCycle: string(opts.DisplayCycle),
			ActiveTotal:  TotalActive(allSubs, opts.DisplayCycle),
			Currency:     opts.Currency.Code,
		},
	}
	return writeJSON(w, output)
}

// PrintSubscriptionsTable outputs subscriptions as a formatted table
func PrintSubscriptionsTable(w io.Writer, allSubs, displaySubs []Subscription, opts OutputOptions, cfg *Config) {
	if len(allSubs) == 0 {
		fmt.Fprintln(w, "No subscriptions added yet.")
		return
	}

	activeCount := len(FilterByStatus(allSubs, StatusActive))
	fmt.Fprintf(w, "Found %d subscriptions (%d active, %d inactive)\n",
		len(allSubs), activeCount, len(allSubs)-activeCount)
	if opts.Filter != "" {
		fmt.Fprintf(w, "Showing: %s\n", opts.Filter)
	}
	fmt.Fprintln(w)

	if len(displaySubs) == 0 {
		fmt.Fprintln(w, "No matching subscriptions found.")
		return
	}

	unit := CycleUnitLabel(opts.DisplayCycle)

	t := table.NewWriter()
	t.SetOutputMirror(w)

	hasDescriptions := false
	for _, sub := range displaySubs {
		if cfg.GetDescription(sub.Name) != "" {
			hasDescriptions = true
			break
		}
	}

	// Build header dynamically
	header := table.Row{"Name"}
	if hasDescriptions {
		header = append(header, "Description")
	}
	header = append(header, "Category", "Status", "Cycle", "Next Due", "Ends", "Amount", "Per "+unit)
	t.AppendHeader(header)

	for _, sub := range displaySubs {
		status := text.FgGreen.Sprint("ACTIVE")
		if !sub.Active {
			status = text.FgRed.Sprint("INACTIVE")
		}

		nextStr := text.FgHiBlack.Sprint("-")
		if d, ok := NextBillingDate(sub, opts.Today); ok && sub.Active {
			nextStr = FormatISODate(d)
		}
		endStr := sub.EndDate
		if endStr == "" {
			endStr = text.FgHiBlack.Sprint("-")
		}

		row := table.Row{sub.Name}
		if hasDescriptions {
			row = append(row, cfg.GetDescription(sub.Name))
		}
		row = append(row,
			sub.Category,
			status,
			CycleLabel(sub.Cycle),
			nextStr,
			endStr,
			opts.Currency.Format(sub.Amount),
			opts.Currency.Format(ToDisplayUnit(sub.Amount, sub.Cycle, opts.DisplayCycle)),
		)
		t.AppendRow(row)
	}

	t.AppendSeparator()

	// Build footer dynamically (empty cells for optional columns)
	footer := table.Row{""}
	if hasDescriptions {
		footer = append(footer, "")
	}
	total := TotalActive(allSubs, opts.DisplayCycle)
	footer = append(footer, "", "", "", "", "", text.Bold.Sprint("Total (active)"), text.Bold.Sprint(opts.Currency.Format(total)))
	t.AppendFooter(footer)

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	// Right-align the two money columns (last two)
	colCount := len(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: colCount - 1, Align: text.AlignRight},
		{Number: colCount, Align: text.AlignRight},
	})

	t.Render()
}

// PrintRemindersTable outputs upcoming reminder events
func PrintRemindersTable(w io.Writer, events []ReminderEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No upcoming reminders.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Trigger", "Type", "Event", "Title", "Message"})
	for _, ev := range events {
		typ := text.FgYellow.Sprint(string(ev.Type))
		if ev.Type == NotificationRenewal {
			typ = text.FgMagenta.Sprint(string(ev.Type))
		}
		t.AppendRow(table.Row{
			ev.TriggerAt.Format("2006-01-02 15:04"),
			typ,
			ev.EventDate,
			ev.Title,
			ev.Body,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Render()
}

// PrintRemindersJSON outputs reminder events as a JSON array
func PrintRemindersJSON(w io.Writer, events []ReminderEvent) error {
	if events == nil {
		events = []ReminderEvent{}
	}
	return writeJSON(w, events)
}

// PrintSimulationTable outputs the simulated reminder days, one block per day
func PrintSimulationTable(w io.Writer, days []SimulatedDay) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No reminders in the simulated period.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Time", "Type", "Title", "Message"})
	for i, day := range days {
		if i > 0 {
			t.AppendSeparator()
		}
		for _, ev := range day.Events {
			t.AppendRow(table.Row{day.Date, ev.TriggerAt.Format("15:04"), string(ev.Type), ev.Title, ev.Body})
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Render()
}

// PrintSimulationJSON outputs the simulated reminder days
func PrintSimulationJSON(w io.Writer, days []SimulatedDay) error {
	if days == nil {
		days = []SimulatedDay{}
	}
	return writeJSON(w, days)
}

// PrintSettings outputs the active reminder settings and display unit
func PrintSettings(w io.Writer, settings ReminderSettings, display Cycle) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Billing lead days", settings.BillingLeadDays},
		{"Renewal lead days", settings.RenewalLeadDays},
		{"Time of day", settings.TimeOfDay},
		{"Display cycle", string(display)},
	})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Render()
}

// PrintSettingsJSON outputs the reminder settings together with the display unit
func PrintSettingsJSON(w io.Writer, settings ReminderSettings, display Cycle) error {
	return writeJSON(w, struct {
		ReminderSettings
		DisplayCycle Cycle `json:"displayCycle"`
	}{settings, display})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
