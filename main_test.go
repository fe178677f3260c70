package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"tokoshop/cmd"
	"tokoshop/internal/config"
	"tokoshop/internal/database"
	"tokoshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "migrate", "seed", "worker"} {
		assert.Contains(t, out, name)
	}
}

func TestServeRejectsUnknownService(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "toko.db"))

	_, err := run(t, "serve", "--service=billing")
	assert.ErrorContains(t, err, `unknown service "billing"`)
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "toko.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "seed", "--admin-password=supersecret")
	require.NoError(t, err)
	_, err = run(t, "seed")
	require.NoError(t, err)

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.Open(context.Background(), cfg.DB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Positive(t, products)

	var admin models.User
	require.NoError(t, db.First(&admin, "username = ?", "admin").Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	var coupons int64
	require.NoError(t, db.Model(&models.Coupon{}).Count(&coupons).Error)
	assert.EqualValues(t, 2, coupons)
}
