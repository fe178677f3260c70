package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokoshop/internal/cache"
	"tokoshop/internal/config"
	"tokoshop/internal/handlers"
	"tokoshop/internal/repositories"
	"tokoshop/internal/server"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", "sqlite")
	v.Set("DB_DSN", "file::memory:")
	v.Set("JWT_SECRET", "test_jwt_secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func memoryStores() server.Stores {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository()
	coupons := repositories.NewMockCouponRepository()
	return server.Stores{
		Users:     repositories.NewMockUserRepository(),
		Products:  products,
		Orders:    orders,
		Coupons:   coupons,
		UoW:       repositories.NewMemoryUnitOfWork(products, orders, coupons),
		Favorites: repositories.NewMockFavoriteRepository(),
		Contacts:  repositories.NewMockContactRepository(),
		Activity:  repositories.NewMockActivityRepository(),
		Cache:     cache.NewMemory(),
	}
}

func get(t *testing.T, service, path string, health map[string]handlers.HealthCheck) (int, []byte) {
	t.Helper()
	app, err := server.New(server.Options{Service: service, CORSOrigins: "*", Health: health},
		server.NewServices(testConfig(t), memoryStores()))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	status, body := get(t, server.ServiceAll, "/health", map[string]handlers.HealthCheck{"db": up})
	assert.Equal(t, http.StatusOK, status)
	var healthy map[string]any
	require.NoError(t, json.Unmarshal(body, &healthy))
	assert.Equal(t, "healthy", healthy["status"])
	assert.Equal(t, map[string]any{"db": map[string]any{"status": "up"}}, healthy["dependencies"])

	status, body = get(t, server.ServiceAll, "/health", map[string]handlers.HealthCheck{"db": up, "redis": down})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "connection refused")
	assert.Contains(t, string(body), `"unhealthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	status, body := get(t, "product", "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServiceSelection(t *testing.T) {
	status, _ := get(t, "product", "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := get(t, "product", "/api/v1/orders", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "message")

	status, _ = get(t, "order", "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, "order", "/api/v1/admin/coupons", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNewRejectsUnknownService(t *testing.T) {
	_, err := server.New(server.Options{Service: "billing"}, server.NewServices(testConfig(t), memoryStores()))
	assert.ErrorContains(t, err, `unknown service "billing"`)
}

func TestNewRequiresDocumentStore(t *testing.T) {
	stores := memoryStores()
	stores.Favorites, stores.Contacts, stores.Activity = nil, nil, nil

	_, err := server.New(server.Options{Service: "favorites"}, server.NewServices(testConfig(t), stores))
	assert.Error(t, err)

	_, err = server.New(server.Options{Service: "auth"}, server.NewServices(testConfig(t), stores))
	assert.NoError(t, err)
}

func TestNeedsDocumentStore(t *testing.T) {
	assert.True(t, server.NeedsDocumentStore("favorites"))
	assert.True(t, server.NeedsDocumentStore("admin"))
	assert.True(t, server.NeedsDocumentStore(server.ServiceAll))
	assert.False(t, server.NeedsDocumentStore("auth"))
	assert.False(t, server.NeedsDocumentStore("order"))
}
