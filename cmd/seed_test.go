package cmd

import (
	"context"
	"testing"

	"tokoshop/internal/config"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/server"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", "sqlite")
	v.Set("DB_DSN", "file::memory:")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository()
	coupons := repositories.NewMockCouponRepository()
	users := repositories.NewMockUserRepository()
	st := server.Stores{
		Users:    users,
		Products: products,
		Orders:   orders,
		Coupons:  coupons,
		UoW:      repositories.NewMemoryUnitOfWork(products, orders, coupons),
	}
	opts := seedOptions{AdminUsername: "admin", AdminEmail: "admin@example.com", AdminPassword: "admin12345"}
	ctx := context.Background()

	require.NoError(t, seed(ctx, cfg, st, opts))
	require.NoError(t, seed(ctx, cfg, st, opts))

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEqual(t, "admin12345", admin.Password)

	count, err := products.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(demoProducts), count)

	all, err := coupons.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(demoCoupons))
}
