package database

import (
	"fmt"

	"github.com/Rana718/fixturegen/internal/database/mysql"
	"github.com/Rana718/fixturegen/internal/database/postgres"
	"github.com/Rana718/fixturegen/internal/database/sqlite"
)

// SupportedProviders lists the provider names accepted by NewAdapter.
var SupportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func NewAdapter(provider string) (Adapter, error) {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}
}
