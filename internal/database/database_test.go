package database

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"tokoshop/internal/config"
	"tokoshop/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() config.DBConfig {
	return config.DBConfig{
		Driver:          "sqlite",
		DSN:             "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, sqliteConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db, "sqlite"))
	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.NoError(t, Ping(ctx, db))

	user := &models.User{ID: uuid.NewString(), Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "alice", stored.Username)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Driver = "oracle"
	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenFailsWhenPingFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db, err := Open(ctx, sqliteConfig())
	assert.Nil(t, db)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "failed to ping database")
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE order_items")
}
