package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payrecon-dev/payrecon/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "reports"

	path := filepath.Join(t.TempDir(), "payrecon.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Payout, got.Payout)
	assert.Equal(t, "reports", got.Output.Dir)
	assert.Equal(t, cfg.Settlement.RevenueShift, got.Settlement.RevenueShift)
	require.Len(t, got.Settlement.Feeds, 3)
	for i, f := range cfg.Settlement.Feeds {
		g := got.Settlement.Feeds[i]
		assert.Equal(t, f.Name, g.Name)
		assert.Equal(t, f.PSP, g.PSP)
		assert.Equal(t, f.Filters, g.Filters)
		assert.Equal(t, f.PSPWindow, g.PSPWindow)
		assert.Equal(t, f.OrderWindow, g.OrderWindow)
		assert.Equal(t, f.Duplicates, g.Duplicates)
		assert.True(t, f.MaxAmount.Equal(g.MaxAmount))
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "disbursed", cfg.Payout.StatusToken)
	assert.Equal(t, []string{"usdc", "usdt"}, cfg.Payout.IDMethods)
	assert.Equal(t, 6*time.Hour, cfg.Settlement.RevenueShift)
	assert.Equal(t, "CFD (Unmatched PSP)", cfg.Settlement.CatchAll)

	zen, err := cfg.Settlement.Feed("ZEN")
	require.NoError(t, err)
	assert.Equal(t, 18*time.Hour, zen.PSPWindow.Start)
	assert.Equal(t, 17*time.Hour+59*time.Minute+59*time.Second, zen.PSPWindow.End)
	assert.Equal(t, 21*time.Hour, zen.OrderWindow.Start)
	assert.Equal(t, 20*time.Hour+59*time.Minute+59*time.Second, zen.OrderWindow.End)

	coins, err := cfg.Settlement.Feed("coinsbuy")
	require.NoError(t, err)
	assert.Equal(t, model.DuplicateRetainFlag, coins.Duplicates)
	assert.Equal(t, "2500", coins.MaxAmount.String())
	assert.NoError(t, cfg.Validate())
}

func TestFeed_Unknown(t *testing.T) {
	_, err := Default().Settlement.Feed("paypal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zen, bridgerpay, coinsbuy")
}

func TestOptions(t *testing.T) {
	cfg := Default()
	zen, err := cfg.Settlement.Feed("zen")
	require.NoError(t, err)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	opts := cfg.Settlement.Options(zen, day, day.AddDate(0, 0, 2))
	assert.Equal(t, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), opts.PSPWindow.Start)
	assert.Equal(t, time.Date(2024, 5, 3, 17, 59, 59, 0, time.UTC), opts.PSPWindow.End)
	assert.Equal(t, time.Date(2024, 5, 3, 20, 59, 59, 0, time.UTC), opts.OrderWindow.End)
	require.Len(t, opts.Rules, 3)
	assert.True(t, opts.Rules[0].Negate)

	layout := zen.PSPLayout()
	assert.Equal(t, "Zen Pay", layout.Gateway)
	assert.Equal(t, []string{"payment_channel", "transaction_type", "transaction_currency"}, layout.Extra)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payrecon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settlement:\n  revenue_shift: 5h\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Hour, cfg.Settlement.RevenueShift)
	assert.Len(t, cfg.Settlement.Feeds, 3)
	assert.Equal(t, "disbursed", cfg.Payout.StatusToken)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payrecon.yaml")
	data := "settlement:\n  feeds:\n    - name: x\n      psp: {id: a, amount: b, time: c}\n      duplicates: keep_first\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown duplicates policy")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Payout, cfg.Payout)
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfig, "")
	assert.Equal(t, FileName, Resolve(""))
	assert.Equal(t, "x.yaml", Resolve("x.yaml"))

	t.Setenv(EnvConfig, "/etc/payrecon.yaml")
	assert.Equal(t, "/etc/payrecon.yaml", Resolve(""))
	assert.Equal(t, "x.yaml", Resolve("x.yaml"))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, LoadEnv())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvConfig+"=from-env.yaml\n"), 0o644))
	t.Setenv(EnvConfig, "")
	require.NoError(t, os.Unsetenv(EnvConfig))
	require.NoError(t, LoadEnv())
	assert.Equal(t, "from-env.yaml", Resolve(""))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payrecon.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "status_token: disbursed")
	assert.Contains(t, contents, "revenue_shift: 6h0m0s")
	assert.Contains(t, contents, "duplicates: retain_flag")
	assert.Contains(t, contents, "max_amount:")
}
