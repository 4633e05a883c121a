package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sample = `
app:
  env: dev
  timezone: Europe/Paris
telegram:
  token: file-token
  admin_chat_id: 42
  operator_chat_ids: [7, 8]
http:
  addr: ":9090"
postgres:
  dsn: postgres://file
metrics:
  enabled: true
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t))
	require.NoError(t, err)
	require.Equal(t, "dev", c.App.Env)
	require.Equal(t, int64(42), c.Telegram.AdminChatID)
	require.Equal(t, []int64{7, 8}, c.Telegram.OperatorChatIDs)
	require.Equal(t, 30, c.Telegram.PollTimeout)
	require.Equal(t, ":9090", c.HTTP.Addr)
	require.True(t, c.Metrics.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_POSTGRES_DSN", "postgres://env")
	c, err := Load(writeConfig(t))
	require.NoError(t, err)
	require.Equal(t, "postgres://env", c.Postgres.DSN)
}

func TestIsOperator(t *testing.T) {
	var c Config
	c.Telegram.AdminChatID = 42
	c.Telegram.OperatorChatIDs = []int64{7}
	require.True(t, c.IsOperator(42))
	require.True(t, c.IsOperator(7))
	require.False(t, c.IsOperator(8))
	require.False(t, Config{}.IsOperator(0))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	var c Config
	c.App.Timezone = "Nowhere/Invalid"
	require.Equal(t, time.UTC, c.Location())
}
