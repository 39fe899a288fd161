package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/subscription-tracker/internal"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Params struct {
	Action   string `descr:"What to do" alts:"list,reminders,simulate,snooze,unsnooze,ack,settings,import,watch,init" strict:"true" default:"list"`
	Config   string `descr:"Path to config file (default: ~/.subscription-tracker/config.yaml)" optional:"true"`
	Store    string `descr:"Path to the subscription store (overrides config)" optional:"true"`
	Backend  string `descr:"Store backend (overrides config)" alts:"file,sqlite" strict:"true" optional:"true"`
	Output   string `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Today    string `descr:"Treat this date as today (YYYY-MM-DD)" optional:"true"`
	Days     int    `descr:"Number of days to simulate" default:"30"`
	Date     string `descr:"Simulate a single day (YYYY-MM-DD)" optional:"true"`
	Sub      string `descr:"Subscription id (snooze, unsnooze, ack)" optional:"true"`
	Until    string `descr:"Snooze until this date (YYYY-MM-DD)" optional:"true"`
	File     string `descr:"File to import, optionally prefixed with its format (json:, xlsx:)" optional:"true"`
	Display  string `descr:"Display cycle for amounts and totals" alts:"daily,weekly,monthly,quarterly,yearly" strict:"true" optional:"true"`
	Status   string `descr:"Show subscriptions by status" alts:"all,active,inactive" strict:"true" default:"all"`
	Cycle    string `descr:"Show subscriptions billed in this cycle" alts:"all,daily,weekly,monthly,quarterly,yearly" strict:"true" default:"all"`
	Category string `descr:"Show subscriptions of this category ('none' for uncategorized)" default:"all"`
	Search   string `descr:"Show subscriptions whose name, provider, category or note contains this text" optional:"true"`
	Sort     string `descr:"Sort by field" alts:"name,price" strict:"true" default:"name"`
	Dir      string `descr:"Sort direction" alts:"asc,desc" strict:"true" default:"asc"`

	BillingLead int    `descr:"Set days of notice before a payment (settings)" default:"-1"`
	RenewalLead int    `descr:"Set days of notice before a contract ends (settings)" default:"-1"`
	Time        string `descr:"Set the time of day reminders fire, HH:MM (settings)" optional:"true"`
	Interval    string `descr:"Poll interval for watch" default:"1m"`
	LogLevel    string `descr:"Log level (overrides config)" alts:"debug,info,warn,error" strict:"true" optional:"true"`
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	boa.NewCmdT[Params]("subscription-tracker").
		WithShort("Track subscriptions and the reminders they need").
		WithLong("Keeps a local list of subscriptions, computes when each one bills next or ends, and decides which reminder is due and when it should fire.").
		WithRunFunc(func(params *Params) {
			if err := run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

type app struct {
	params   *Params
	cfg      *internal.Config
	repo     *internal.Repository
	log      *zap.Logger
	currency internal.Currency
	today    time.Time
	out      io.Writer
}

func run(params *Params, out io.Writer) error {
	cfg, err := loadConfig(params.Config, params.Action != "init")
	if err != nil {
		return err
	}
	if params.LogLevel != "" {
		cfg.LogLevel = params.LogLevel
	}

	log, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	today := time.Now()
	if params.Today != "" {
		t, ok := internal.ParseISODate(params.Today)
		if !ok {
			return fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", params.Today)
		}
		today = t
	}

	backend := cfg.Store.Backend
	if params.Backend != "" {
		backend = params.Backend
		cfg.Store.Backend = backend
	}
	storePath := cfg.StorePath()
	if params.Store != "" {
		storePath = params.Store
	}

	ctx := context.Background()
	kv, err := internal.OpenStore(ctx, backend, storePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()
	log.Debug("store opened", zap.String("backend", backend), zap.String("path", storePath))

	a := &app{
		params:   params,
		cfg:      cfg,
		repo:     internal.NewRepository(kv, log, cfg.ReminderDefaults()),
		log:      log,
		currency: internal.ResolveCurrency(cfg.Currency, cfg.Locale),
		today:    internal.StartOfDay(today),
		out:      out,
	}

	switch params.Action {
	case "", "list":
		return a.list(ctx)
	case "reminders":
		return a.reminders(ctx)
	case "simulate":
		return a.simulate(ctx)
	case "snooze":
		return a.snooze(ctx)
	case "unsnooze":
		return a.unsnooze(ctx)
	case "ack":
		return a.ack(ctx)
	case "settings":
		return a.settings(ctx)
	case "import":
		return a.importFile(ctx)
	case "watch":
		return a.watch(ctx)
	case "init":
		return a.initConfig(ctx)
	default:
		return fmt.Errorf("unknown action: %s", params.Action)
	}
}

// loadConfig loads an explicit config path, or the default one if it exists.
// Without mustExist a missing explicit path also falls back to the defaults.
func loadConfig(path string, mustExist bool) (*internal.Config, error) {
	var cfg *internal.Config
	if path == "" {
		path = internal.DefaultConfigPath()
		mustExist = false
	}
	if _, err := os.Stat(path); err != nil && !mustExist {
		path = ""
	}
	if path != "" {
		loaded, err := internal.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = internal.NewDefaultConfig()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// subscriptions loads the stored subscriptions minus the excluded ones
func (a *app) subscriptions(ctx context.Context) ([]internal.Subscription, error) {
	subs, err := a.repo.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return internal.FilterByExclusions(subs, a.cfg), nil
}

func (a *app) displayCycle(ctx context.Context) (internal.Cycle, error) {
	if a.params.Display != "" {
		return internal.ParseDisplayCycle(a.params.Display), nil
	}
	return a.repo.LoadDisplayCycle(ctx, internal.ParseDisplayCycle(a.cfg.DisplayCycle))
}

func (a *app) engine(ctx context.Context) (*internal.ReminderEngine, error) {
	settings, err := a.repo.LoadReminderSettings(ctx)
	if err != nil {
		return nil, err
	}
	return internal.NewReminderEngine(settings, a.currency), nil
}

func (a *app) list(ctx context.Context) error {
	subs, err := a.subscriptions(ctx)
	if err != nil {
		return err
	}
	display, err := a.displayCycle(ctx)
	if err != nil {
		return err
	}

	p := a.params
	visible := internal.ListSubscriptions(subs, internal.ListOptions{
		Status:       p.Status,
		Cycle:        p.Cycle,
		Category:     p.Category,
		Search:       p.Search,
		SortField:    p.Sort,
		SortDir:      p.Dir,
		DisplayCycle: display,
	})

	opts := internal.OutputOptions{
		DisplayCycle: display,
		Currency:     a.currency,
		Today:        a.today,
		Filter:       describeFilter(p),
	}
	if p.Output == "json" {
		return internal.PrintSubscriptionsJSON(a.out, subs, visible, opts, a.cfg)
	}
	internal.PrintSubscriptionsTable(a.out, subs, visible, opts, a.cfg)
	return nil
}

func describeFilter(p *Params) string {
	var parts []string
	if p.Status != "" && p.Status != "all" {
		parts = append(parts, "status: "+p.Status)
	}
	if p.Cycle != "" && p.Cycle != "all" {
		parts = append(parts, "cycle: "+p.Cycle)
	}
	if p.Category != "" && p.Category != "all" {
		parts = append(parts, "category: "+p.Category)
	}
	if p.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", p.Search))
	}
	return strings.Join(parts, ", ")
}

func (a *app) reminders(ctx context.Context) error {
	subs, err := a.subscriptions(ctx)
	if err != nil {
		return err
	}
	engine, err := a.engine(ctx)
	if err != nil {
		return err
	}

	events := engine.ComputeAllReminders(subs, a.today)
	internal.LogUpcomingReminders(a.log, events, subs)

	if a.params.Output == "json" {
		return internal.PrintRemindersJSON(a.out, events)
	}
	internal.PrintRemindersTable(a.out, events)
	return nil
}

func (a *app) simulate(ctx context.Context) error {
	subs, err := a.subscriptions(ctx)
	if err != nil {
		return err
	}
	engine, err := a.engine(ctx)
	if err != nil {
		return err
	}

	var days []internal.SimulatedDay
	if a.params.Date != "" {
		day, ok := internal.ParseISODate(a.params.Date)
		if !ok {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", a.params.Date)
		}
		if events := engine.SimulateRemindersFor(subs, day); len(events) > 0 {
			days = append(days, internal.SimulatedDay{Date: internal.FormatISODate(day), Events: events})
		}
	} else {
		if a.params.Days <= 0 {
			return fmt.Errorf("invalid --days %d: must be positive", a.params.Days)
		}
		days = engine.SimulateNextNDays(subs, a.today, a.params.Days)
	}

	if a.params.Output == "json" {
		return internal.PrintSimulationJSON(a.out, days)
	}
	internal.PrintSimulationTable(a.out, days)
	return nil
}

// updateSubscription applies fn to the subscription named by --sub and saves the list
func (a *app) updateSubscription(ctx context.Context, fn func(internal.Subscription) internal.Subscription) (internal.Subscription, error) {
	if a.params.Sub == "" {
		return internal.Subscription{}, errors.New("missing --sub")
	}
	subs, err := a.repo.LoadSubscriptions(ctx)
	if err != nil {
		return internal.Subscription{}, err
	}
	updated, err := internal.UpdateSubscription(subs, a.params.Sub, fn)
	if err != nil {
		return internal.Subscription{}, err
	}
	if err := a.repo.SaveSubscriptions(ctx, updated); err != nil {
		return internal.Subscription{}, err
	}
	return internal.FindSubscription(updated, a.params.Sub)
}

func (a *app) snooze(ctx context.Context) error {
	until, ok := internal.ParseISODate(a.params.Until)
	if !ok {
		return fmt.Errorf("invalid --until %q: expected YYYY-MM-DD", a.params.Until)
	}
	if until.Before(a.today) {
		return fmt.Errorf("invalid --until %s: date is in the past", a.params.Until)
	}

	sub, err := a.updateSubscription(ctx, func(s internal.Subscription) internal.Subscription {
		return internal.Snooze(s, until)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Snoozed %s until %s\n", sub.Name, internal.FormatDateShort(until))
	return nil
}

func (a *app) unsnooze(ctx context.Context) error {
	sub, err := a.updateSubscription(ctx, internal.ClearSnooze)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cleared snooze of %s\n", sub.Name)
	return nil
}

// ack marks the current reminder of a subscription as delivered
func (a *app) ack(ctx context.Context) error {
	engine, err := a.engine(ctx)
	if err != nil {
		return err
	}

	var acked *internal.ReminderEvent
	sub, err := a.updateSubscription(ctx, func(s internal.Subscription) internal.Subscription {
		ev, ok := engine.NextReminderForSub(s, a.today)
		if !ok {
			return s
		}
		acked = &ev
		return internal.MarkNotified(s, ev)
	})
	if err != nil {
		return err
	}
	if acked == nil {
		fmt.Fprintf(a.out, "No pending reminder for %s\n", sub.Name)
		return nil
	}
	fmt.Fprintf(a.out, "Acknowledged %s reminder for %s (%s)\n", acked.Type, sub.Name, internal.FormatDateShort(acked.TriggerAt))
	return nil
}

func (a *app) settings(ctx context.Context) error {
	settings, err := a.repo.LoadReminderSettings(ctx)
	if err != nil {
		return err
	}

	p := a.params
	changed := false
	if p.BillingLead >= 0 {
		settings.BillingLeadDays = p.BillingLead
		changed = true
	}
	if p.RenewalLead >= 0 {
		settings.RenewalLeadDays = p.RenewalLead
		changed = true
	}
	if p.Time != "" {
		if !internal.ValidTimeOfDay(p.Time) {
			return fmt.Errorf("invalid --time %q: expected HH:MM", p.Time)
		}
		settings.TimeOfDay = p.Time
		changed = true
	}
	if changed {
		if err := a.repo.SaveReminderSettings(ctx, settings); err != nil {
			return err
		}
	}

	display, err := a.repo.LoadDisplayCycle(ctx, internal.ParseDisplayCycle(a.cfg.DisplayCycle))
	if err != nil {
		return err
	}
	if p.Display != "" {
		display = internal.ParseDisplayCycle(p.Display)
		if err := a.repo.SaveDisplayCycle(ctx, display); err != nil {
			return err
		}
	}

	if p.Output == "json" {
		return internal.PrintSettingsJSON(a.out, settings, display)
	}
	internal.PrintSettings(a.out, settings, display)
	return nil
}

func (a *app) importFile(ctx context.Context) error {
	if a.params.File == "" {
		return errors.New("missing --file")
	}
	imported, err := internal.ImportFile(a.params.File)
	if err != nil {
		return err
	}

	existing, err := a.repo.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}
	merged, replaced := internal.MergeSubscriptions(existing, imported)
	if err := a.repo.SaveSubscriptions(ctx, merged); err != nil {
		return err
	}

	a.log.Info("imported subscriptions",
		zap.String("file", a.params.File),
		zap.Int("imported", len(imported)),
		zap.Int("replaced", replaced))
	fmt.Fprintf(a.out, "Imported %d subscriptions (%d added, %d replaced), %d total\n",
		len(imported), len(imported)-replaced, replaced, len(merged))
	return nil
}

// initConfig writes a config template with a description placeholder per stored
// subscription. An existing file is never overwritten.
func (a *app) initConfig(ctx context.Context) error {
	path := a.params.Config
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	if path == "" {
		return errors.New("cannot determine config path, use --config")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	subs, err := a.repo.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}
	if err := internal.GenerateConfigTemplate(subs).Save(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote config template to %s (%d descriptions)\n", path, len(subs))
	return nil
}

// watch runs the poller until interrupted. Delivered reminders are printed and
// recorded on the subscription so later runs do not repeat them.
func (a *app) watch(ctx context.Context) error {
	interval, err := time.ParseDuration(a.params.Interval)
	if err != nil || interval <= 0 {
		return fmt.Errorf("invalid --interval %q", a.params.Interval)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	load := func(ctx context.Context) ([]internal.Subscription, internal.ReminderSettings, error) {
		subs, err := a.subscriptions(ctx)
		if err != nil {
			return nil, internal.ReminderSettings{}, err
		}
		settings, err := a.repo.LoadReminderSettings(ctx)
		return subs, settings, err
	}

	notify := internal.NotifierFunc(func(ctx context.Context, ev internal.ReminderEvent) error {
		fmt.Fprintf(a.out, "[%s] %s\n  %s\n", ev.TriggerAt.Format("2006-01-02 15:04"), ev.Title, ev.Body)

		subs, err := a.repo.LoadSubscriptions(ctx)
		if err != nil {
			return err
		}
		updated, err := internal.UpdateSubscription(subs, ev.SubID, func(s internal.Subscription) internal.Subscription {
			return internal.MarkNotified(s, ev)
		})
		if err != nil {
			return err
		}
		return a.repo.SaveSubscriptions(ctx, updated)
	})

	internal.NewPoller(load, notify, a.currency, a.log, interval).Run(ctx)
	return nil
}
