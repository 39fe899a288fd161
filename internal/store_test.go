package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func openTestStores(t *testing.T) map[string]KVStore {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := OpenStore(ctx, BackendFile, filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	db, err := OpenStore(ctx, BackendSQLite, filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = file.Close()
		_ = db.Close()
	})

	return map[string]KVStore{BackendFile: file, BackendSQLite: db}
}

func TestKVStore_GetSet(t *testing.T) {
	ctx := context.Background()

	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))
			v, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":1}`, string(v))

			require.NoError(t, kv.Set(ctx, "k", []byte("second")))
			v, _, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "second", string(v))
		})
	}
}

func TestKVStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(dir, "reopen-"+backend)

			kv, err := OpenStore(ctx, backend, path)
			require.NoError(t, err)
			require.NoError(t, kv.Set(ctx, KeyDisplayCycle, []byte("yearly")))
			require.NoError(t, kv.Close())

			kv, err = OpenStore(ctx, backend, path)
			require.NoError(t, err)
			defer kv.Close()

			v, ok, err := kv.Get(ctx, KeyDisplayCycle)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "yearly", string(v))
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), "redis", "x")
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestOpenFileStore(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err := OpenFileStore(empty)
	assert.NoError(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err = OpenFileStore(broken)
	assert.Error(t, err)

	// Values are kept as strings, so the file reads like local storage
	nested := filepath.Join(dir, "nested", "store.json")
	s, err := OpenFileStore(nested)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), KeyReminders, []byte(`{"billingLeadDays":2}`)))

	data, err := os.ReadFile(nested)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"abo-checker.reminders.v1": "{\"billingLeadDays\":2}"`)
}

func TestFileStore_FailedWriteKeepsMemoryInSync(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyDisplayCycle, []byte("monthly")))

	// A non-empty directory in place of the store file makes the rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0755))

	assert.Error(t, s.Set(ctx, KeyDisplayCycle, []byte("yearly")))
	v, ok, err := s.Get(ctx, KeyDisplayCycle)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "monthly", string(v))

	assert.Error(t, s.Set(ctx, KeyReminders, []byte("{}")))
	_, ok, err = s.Get(ctx, KeyReminders)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newTestRepository(t *testing.T) (*Repository, KVStore, *observer.ObservedLogs) {
	t.Helper()
	kv, err := OpenFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	return NewRepository(kv, zap.New(core), DefaultReminderSettings()), kv, logs
}

func TestRepository_Subscriptions(t *testing.T) {
	ctx := context.Background()
	repo, kv, logs := newTestRepository(t)

	subs, err := repo.LoadSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	sub := netflix()
	sub.Debit = DebitAuto
	require.NoError(t, repo.SaveSubscriptions(ctx, []Subscription{sub}))

	loaded, err := repo.LoadSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Subscription{sub}, loaded)

	// Corrupt data is reported and treated as empty
	require.NoError(t, kv.Set(ctx, KeySubscriptions, []byte(`{"broken"`)))
	loaded, err = repo.LoadSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, 1, logs.FilterMessageSnippet("unexpected subscription format").Len())
}

func TestRepository_ReminderSettings(t *testing.T) {
	ctx := context.Background()
	repo, kv, logs := newTestRepository(t)

	settings, err := repo.LoadReminderSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultReminderSettings(), settings)

	want := ReminderSettings{BillingLeadDays: 1, RenewalLeadDays: 30, TimeOfDay: "07:30"}
	require.NoError(t, repo.SaveReminderSettings(ctx, want))
	settings, err = repo.LoadReminderSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, settings)

	require.NoError(t, kv.Set(ctx, KeyReminders, []byte("not json")))
	settings, err = repo.LoadReminderSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultReminderSettings(), settings)
	assert.Equal(t, 1, logs.FilterMessageSnippet("invalid reminder settings").Len())
}

func TestRepository_DisplayCycle(t *testing.T) {
	ctx := context.Background()
	repo, kv, _ := newTestRepository(t)

	c, err := repo.LoadDisplayCycle(ctx, CycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, CycleMonthly, c)

	require.NoError(t, repo.SaveDisplayCycle(ctx, CycleWeekly))
	c, err = repo.LoadDisplayCycle(ctx, CycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, CycleWeekly, c)

	require.NoError(t, repo.SaveDisplayCycle(ctx, Cycle("hourly")))
	v, _, err := kv.Get(ctx, KeyDisplayCycle)
	require.NoError(t, err)
	assert.Equal(t, "monthly", string(v))

	require.NoError(t, kv.Set(ctx, KeyDisplayCycle, []byte("fortnightly")))
	c, err = repo.LoadDisplayCycle(ctx, CycleYearly)
	require.NoError(t, err)
	assert.Equal(t, CycleYearly, c)
}
