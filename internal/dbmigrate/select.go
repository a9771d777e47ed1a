package dbmigrate

import (
	"errors"

	"github.com/fdg312/meal-planner/internal/config"
)

// DefaultMigrationsDir is the directory inside the embedded FS.
const DefaultMigrationsDir = "migrations"

// Selection is the database URL picked for DDL and where it came from.
type Selection struct {
	URL     string
	Source  string
	Warning string
}

var ErrNoDatabaseURL = errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")

// SelectDatabaseURL picks the URL for migrations.
// Priority: DIRECT > DATABASE_URL > POOLED (with warning).
// With requireDirect only DATABASE_URL_DIRECT is accepted.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (Selection, error) {
	if requireDirect {
		if cfg.DatabaseURLDirect == "" {
			return Selection{}, errors.New("DATABASE_URL_DIRECT is required for DDL/migrations")
		}
		return Selection{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	}

	switch {
	case cfg.DatabaseURLDirect != "":
		return Selection{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	case cfg.DatabaseURLRaw != "":
		return Selection{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	case cfg.DatabaseURLPooled != "":
		return Selection{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT",
		}, nil
	}

	return Selection{}, ErrNoDatabaseURL
}
