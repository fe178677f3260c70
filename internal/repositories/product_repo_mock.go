package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tokoshop/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MockProductRepository) matches(p models.Product, f models.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" &&
		!strings.Contains(strings.ToLower(p.Name), s) &&
		!strings.Contains(strings.ToLower(p.Description), s) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && p.Stock <= 0 {
		return false
	}
	if f.ActiveOnly && !p.Active() {
		return false
	}
	return true
}

// List returns one filtered page of products.
func (r *MockProductRepository) List(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if r.matches(p, f) {
			productList = append(productList, p)
		}
	}

	sort.Slice(productList, func(i, j int) bool {
		a, b := productList[i], productList[j]
		switch f.Sort {
		case "price_asc":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "price_desc":
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	return paginate(productList, f.Page), int64(len(productList)), nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

func (r *MockProductRepository) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
	}
	if product.IsActive == nil {
		active := true
		product.IsActive = &active
	}
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	if product.IsActive == nil {
		product.IsActive = existing.IsActive
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = *product
	return nil
}

func (r *MockProductRepository) SetStock(_ context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *MockProductRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range r.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MockProductRepository) LowStock(_ context.Context, threshold, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	low := []models.Product{}
	for _, p := range r.products {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].Stock != low[j].Stock {
			return low[i].Stock < low[j].Stock
		}
		return low[i].Name < low[j].Name
	})
	if len(low) > limit {
		low = low[:limit]
	}
	return low, nil
}

func (r *MockProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *MockProductRepository) DecrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	p.Stock -= qty
	r.products[id] = p
	return nil
}

func (r *MockProductRepository) IncrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.products[id]; ok {
		p.Stock += qty
		r.products[id] = p
	}
	return nil
}

func (r *MockProductRepository) snapshot() func() {
	r.mu.RLock()
	saved := make(map[string]models.Product, len(r.products))
	for k, v := range r.products {
		saved[k] = v
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.products = saved
		r.mu.Unlock()
	}
}

func paginate[T any](items []T, page models.Page) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
