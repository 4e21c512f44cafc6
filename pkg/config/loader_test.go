package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/config"
)

type testConfig struct {
	Name     string        `env:"TEST_CFG_NAME" envDefault:"default_name"`
	Count    int           `env:"TEST_CFG_COUNT" envDefault:"42"`
	Enabled  bool          `env:"TEST_CFG_ENABLED" envDefault:"true"`
	Interval time.Duration `env:"TEST_CFG_INTERVAL" envDefault:"60s"`
	Nested   nestedConfig
}

type nestedConfig struct {
	Bucket string `env:"TEST_CFG_BUCKET"`
}

type requiredConfig struct {
	Required string `env:"TEST_CFG_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		require.NoError(t, err)

		assert.Equal(t, "default_name", cfg.Name)
		assert.Equal(t, 42, cfg.Count)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, time.Minute, cfg.Interval)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "from_env")
		t.Setenv("TEST_CFG_INTERVAL", "300000ms")
		t.Setenv("TEST_CFG_BUCKET", "tenants")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "from_env", cfg.Name)
		assert.Equal(t, 5*time.Minute, cfg.Interval)
		assert.Equal(t, "tenants", cfg.Nested.Bucket)
	})

	t.Run("prefix", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg,
			config.WithPrefix("STAGING_"),
			config.WithEnvironment(map[string]string{"STAGING_TEST_CFG_COUNT": "9"}),
		)
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Count)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"TEST_CFG_COUNT": "many"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("bare integer duration is milliseconds", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"TEST_CFG_INTERVAL": "300000"}))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.Interval)
	})

	t.Run("invalid duration", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"TEST_CFG_INTERVAL": "soon"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
	assert.NotPanics(t, func() {
		var cfg testConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("named file", func(t *testing.T) {
		os.Unsetenv("TEST_CFG_NAME")
		os.Unsetenv("TEST_CFG_COUNT")
		t.Cleanup(func() {
			os.Unsetenv("TEST_CFG_NAME")
			os.Unsetenv("TEST_CFG_COUNT")
		})

		require.NoError(t, config.LoadEnv("testdata/.env.test"))

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_file", cfg.Name)
		assert.Equal(t, 7, cfg.Count)
	})

	t.Run("existing variables win", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "already_set")
		require.NoError(t, config.LoadEnv("testdata/.env.test"))
		assert.Equal(t, "already_set", os.Getenv("TEST_CFG_NAME"))
		os.Unsetenv("TEST_CFG_COUNT")
	})

	t.Run("missing named file", func(t *testing.T) {
		err := config.LoadEnv("testdata/does_not_exist.env")
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})

	t.Run("missing default file is fine", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		assert.NoError(t, config.LoadEnv())
	})
}
