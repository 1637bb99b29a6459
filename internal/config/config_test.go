package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-recon/internal/reconcile/model"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, model.DefaultOptions(), cfg.Options())
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("THRESHOLD", "85.5")
	t.Setenv("WORKERS", "4")
	t.Setenv("DUPLICATE_POLICY", "first-wins")
	t.Setenv("ALLOW_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)

	opt := cfg.Options()
	assert.Equal(t, 85.5, opt.Threshold)
	assert.Equal(t, 4, opt.Workers)
	assert.Equal(t, model.DuplicateFirstWins, opt.Duplicates)
}

func TestLoad_NaNThreshold(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("THRESHOLD", "NaN")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yaml := "threshold: 75\nstrict_prices: true\ndb_path: \"\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 75.0, cfg.Threshold)
	assert.True(t, cfg.StrictPrices)
	assert.Empty(t, cfg.DBPath)
}

func TestValidate(t *testing.T) {
	base := Config{Threshold: 90, Workers: 1, MaxUploadMB: 1, DuplicatePolicy: "last-wins"}
	require.NoError(t, base.Validate())

	bad := base
	bad.Threshold = 101
	assert.Error(t, bad.Validate())

	bad = base
	bad.Threshold = math.NaN()
	assert.Error(t, bad.Validate(), "NaN отключил бы порог")

	bad = base
	bad.Workers = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.DuplicatePolicy = "random"
	assert.Error(t, bad.Validate())
}

func TestSetupLogger(t *testing.T) {
	dir := t.TempDir()
	logger := SetupLogger(Config{LogLevel: "debug", LogFile: filepath.Join(dir, "logs", "x.log")})
	logger.Info().Msg("hello")
	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.NoError(t, err)
}
