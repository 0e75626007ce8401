package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
database:
  path: /var/lib/shop/shop.db
shop:
  name: Atelier Setar
  timezone: Africa/Algiers
auth:
  jwt_secret: 0123456789abcdef0123456789abcdef
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddress())
	assert.Equal(t, "/var/lib/shop/shop.db", cfg.Database.Path)
	assert.Equal(t, "Atelier Setar", cfg.Shop.Name)
	assert.Equal(t, "Africa/Algiers", cfg.Location().String())

	// Defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.SweepRentals)
	assert.Equal(t, 30*time.Second, cfg.PrintTimeout())
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  path: shop.db
`)
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHROME_URL", "ws://chrome:9222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ws://chrome:9222", cfg.Printing.RemoteURL)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad port", Config{Server: ServerConfig{Port: 70000}, Database: DatabaseConfig{Path: "x.db"}}},
		{"missing database", Config{Server: ServerConfig{Port: 8080}}},
		{"unknown timezone", Config{Server: ServerConfig{Port: 8080}, Database: DatabaseConfig{Path: "x.db"}, Shop: ShopConfig{Timezone: "Mars/Olympus"}}},
		{"short secret", Config{Server: ServerConfig{Port: 8080}, Database: DatabaseConfig{Path: "x.db"}, Auth: AuthConfig{JWTSecret: "short"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	// Defaults carry no signing secret.
	t.Setenv("JWT_SECRET", "")
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SHOP_TIMEZONE", "Africa/Algiers")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, "gestiondestock.db", cfg.Database.Path)
	assert.Equal(t, "Africa/Algiers", cfg.Location().String())
	assert.Equal(t, "DA", cfg.Shop.Currency)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
