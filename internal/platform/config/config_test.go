package config

import (
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SUPABASE_TABLE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.PageSize)
	assert.Equal(t, 100*time.Millisecond, cfg.RefreshGraceDelay)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.True(t, cfg.IncludeUnclaimed)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("PGSQL_URL", "postgres://localhost/fd")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REFRESH_GRACE_DELAY", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshGraceDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://xyz.supabase.co", cfg.SupabaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"supabase complete", Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x", SupabaseAnonKey: "k"}, false},
		{"supabase missing url", Config{StoreDriver: DriverSupabase, SupabaseAnonKey: "k"}, true},
		{"supabase missing key", Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x"}, true},
		{"postgres missing secret", Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://x"}, true},
		{"unknown driver", Config{StoreDriver: "mongo"}, true},
		{"bad timezone", Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x", SupabaseAnonKey: "k", Timezone: "Mars/Olympus"}, true},
		{"production needs secret", Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x", SupabaseAnonKey: "k", IsProduction: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
