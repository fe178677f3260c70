package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tokoshop/internal/cache"
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	return m.Called(ctx, id, stock).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	args := m.Called(ctx, threshold, limit)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductService_ListProductsIsCached(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.WithProductCache(cache.NewMemory(), time.Minute))

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: dec("10"), Stock: 100},
		{ID: "2", Name: "Product B", Price: dec("20"), Stock: 50},
	}
	filter := models.ProductFilter{ActiveOnly: true}
	normalized := filter
	normalized.Page = normalized.Page.Normalize()
	mockRepo.On("List", ctx, normalized).Return(expectedProducts, int64(2), nil).Once()

	first, err := service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, first.Data, 2)
	assert.EqualValues(t, 2, first.Total)
	assert.Equal(t, models.DefaultPageSize, first.PageSize)

	// second call is served from the cache
	second, err := service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "Product B", second.Data[1].Name)
	mockRepo.AssertExpectations(t)

	// a write drops cached listings
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	require.NoError(t, service.DeleteProduct(ctx, "1"))
	mockRepo.On("List", ctx, normalized).Return(expectedProducts[1:], int64(1), nil).Once()
	third, err := service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, third.Data, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProductsCacheKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.WithProductCache(cache.NewMemory(), time.Minute))

	first := models.ProductFilter{Category: "x|q=y"}
	second := models.ProductFilter{Category: "x", Search: "y|q="}
	for _, f := range []*models.ProductFilter{&first, &second} {
		f.Page = f.Page.Normalize()
	}
	mockRepo.On("List", ctx, first).Return([]models.Product{{ID: "1", Name: "Pipe"}}, int64(1), nil).Once()
	mockRepo.On("List", ctx, second).Return([]models.Product{}, int64(0), nil).Once()

	res, err := service.ListProducts(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	res, err = service.ListProducts(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListingComputedDuringWriteIsNotServed(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.WithProductCache(cache.NewMemory(), time.Minute))

	filter := models.ProductFilter{ActiveOnly: true}
	filter.Page = filter.Page.Normalize()
	old := []models.Product{{ID: "1", Name: "Old"}}
	fresh := []models.Product{{ID: "1", Name: "Fresh"}}

	// a write lands between the database read and the cache fill
	mockRepo.On("List", ctx, filter).Return(old, int64(1), nil).
		Run(func(mock.Arguments) { service.InvalidateListings(ctx) }).Once()
	mockRepo.On("List", ctx, filter).Return(fresh, int64(1), nil).Once()

	res, err := service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "Old", res.Data[0].Name)

	res, err = service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", res.Data[0].Name)

	// the fresh page is cached
	res, err = service.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", res.Data[0].Name)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: dec("10"), Stock: 100}

	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", services.ErrNotFound)).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := &models.Product{ID: "client-chosen", Name: "New Product", Price: dec("50"), Stock: 20}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool { return p.ID == "" })).Return(nil).Once()
	err := service.CreateProduct(ctx, newProduct)
	assert.NoError(t, err)

	mockRepo.On("Create", ctx, newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(ctx, newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	updatedProduct := &models.Product{ID: "1", Name: "Product A Updated", Price: dec("12"), Stock: 95}
	mockRepo.On("Update", ctx, updatedProduct).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct(ctx, updatedProduct))

	missing := &models.Product{ID: "99", Name: "NonExistent", Price: dec("1"), Stock: 1}
	mockRepo.On("Update", ctx, missing).Return(fmt.Errorf("product with ID 99: %w", services.ErrNotFound)).Once()
	assert.ErrorIs(t, service.UpdateProduct(ctx, missing), services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SetStock(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	assert.ErrorIs(t, service.SetStock(ctx, "1", -1), services.ErrInvalidInput)

	mockRepo.On("SetStock", ctx, "1", 0).Return(nil).Once()
	assert.NoError(t, service.SetStock(ctx, "1", 0))
	mockRepo.AssertExpectations(t)
}
