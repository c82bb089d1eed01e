package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"TICKIFY_CONFIG", "PORT", "ENVIRONMENT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	"STORAGE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "JWT_SECRET",
	"JWT_EXPIRATION_HOURS", "BCRYPT_COST",
}

// clearEnv unsets every variable Load reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	want := defaults()
	want.JWTSecret = "secret"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tickify.yaml")
	err := os.WriteFile(path, []byte(`
port: "9090"
storage_driver: sqlite
sqlite_path: /var/lib/tickify.db
jwt_secret: from-file
allowed_origins:
  - https://tickify.example
bcrypt_cost: 5
`), 0o600)
	require.NoError(t, err)

	t.Setenv("TICKIFY_CONFIG", path)
	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	want := defaults()
	want.Port = "7070"
	want.StorageDriver = "sqlite"
	want.SQLitePath = "/var/lib/tickify.db"
	want.JWTSecret = "from-file"
	want.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	want.BcryptCost = 5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "mongo"},
			wantErr: "unknown storage driver",
		},
		{
			name:    "bcrypt cost too high",
			env:     map[string]string{"JWT_SECRET": "s", "BCRYPT_COST": "40"},
			wantErr: "bcrypt cost",
		},
		{
			name:    "missing config file",
			env:     map[string]string{"JWT_SECRET": "s", "TICKIFY_CONFIG": "/does/not/exist.yaml"},
			wantErr: "read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
