package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
environment: test
birdeye:
  api_key: test-key
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 2.0, cfg.Analyzer.WindowSeconds)
	require.Equal(t, 3, cfg.Analyzer.MinTradesInCluster)
	require.Equal(t, 0.7, cfg.Analyzer.MaxWalletDiversity)
	require.Equal(t, 300, cfg.Analyzer.TxLimit)
	require.Equal(t, 3, cfg.Analyzer.PriceWindowDays)
	require.Equal(t, 30*time.Second, cfg.Analyzer.CallTimeout)
	require.Equal(t, "https://public-api.birdeye.so", cfg.Birdeye.BaseURL)
	require.Equal(t, 10*time.Minute, cfg.Cache.ReportTTL)
	require.Equal(t, []string{"solana", "ethereum", "base"}, cfg.HolderScan.Chains)
	require.Equal(t, 30*time.Second, cfg.Logging.Aggregation.FlushInterval)
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, "birdeye:\n  api_key: k\n"))
	require.ErrorContains(t, err, "environment")
}

func TestLoadRejectsBadAnalyzerSettings(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
analyzer:
  min_trades_in_cluster: 1
`))
	require.ErrorContains(t, err, "min_trades_in_cluster")

	_, err = Load(writeConfig(t, minimalConfig+`
analyzer:
  max_wallet_diversity: 1.5
`))
	require.ErrorContains(t, err, "max_wallet_diversity")
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
kafka:
  enabled: true
`))
	require.ErrorContains(t, err, "brokers")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BIRDEYE_API_KEY", "env-key")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.Birdeye.APIKey)
	require.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
}
