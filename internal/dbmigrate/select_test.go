package dbmigrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-planner/internal/config"
)

func TestSelectDatabaseURL(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantURL     string
		wantSource  string
		wantWarning bool
	}{
		{
			name: "direct wins",
			cfg: config.Config{
				DatabaseURLDirect: "postgres://direct",
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://direct",
			wantSource: "DATABASE_URL_DIRECT",
		},
		{
			name: "falls back to DATABASE_URL",
			cfg: config.Config{
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://url",
			wantSource: "DATABASE_URL",
		},
		{
			name:        "pooled warns",
			cfg:         config.Config{DatabaseURLPooled: "postgres://pooled"},
			wantURL:     "postgres://pooled",
			wantSource:  "DATABASE_URL_POOLED",
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := SelectDatabaseURL(&tt.cfg, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, sel.URL)
			assert.Equal(t, tt.wantSource, sel.Source)
			assert.Equal(t, tt.wantWarning, sel.Warning != "")
		})
	}
}

func TestSelectDatabaseURL_RequireDirect(t *testing.T) {
	cfg := &config.Config{
		DatabaseURLRaw:    "postgres://url",
		DatabaseURLPooled: "postgres://pooled",
	}

	_, err := SelectDatabaseURL(cfg, true)
	assert.Error(t, err)
}

func TestSelectDatabaseURL_NothingConfigured(t *testing.T) {
	_, err := SelectDatabaseURL(&config.Config{}, false)
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "00001_init.sql", names[0])
}
