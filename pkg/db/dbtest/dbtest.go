// Package dbtest opens throwaway SQLite databases carrying the full schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// Config returns a private in-memory SQLite configuration. A single
// connection keeps every statement on the same database.
func Config() config.DBConfig {
	return config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Open returns a migrated client that is closed when the test ends.
func Open(t testing.TB) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), Config(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(models.All()...))
	return client
}
