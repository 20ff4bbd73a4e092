// File: cmd/root_test.go
package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, initializeConfig())

	cfg, err := configFromViper()
	require.NoError(t, err)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.SettleDelay)
	assert.Equal(t, 5*time.Second, cfg.Sync.ReadinessTimeout)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("AVIATOR_BROWSER_HEADLESS", "false")
	t.Setenv("AVIATOR_LOGGER_LEVEL", "debug")

	require.NoError(t, initializeConfig())

	cfg, err := configFromViper()
	require.NoError(t, err)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestInspectCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"inspect"})
	require.NoError(t, err)
	assert.Equal(t, "inspect", cmd.Name())

	flag := cmd.Flags().Lookup("screenshot")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)

	timeout := cmd.Flags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "1m0s", timeout.DefValue)
}
