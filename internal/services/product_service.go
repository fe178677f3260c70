package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"tokoshop/internal/cache"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	productListPrefix = "products:list:"
	// productListGen names the current listing generation. Writes rotate it so
	// pages computed before the write are never read again.
	productListGen = "products:generation"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	cache    cache.Store
	cacheTTL time.Duration
}

type ProductOption func(*ProductService)

// WithProductCache caches public listings in store for ttl.
func WithProductCache(store cache.Store, ttl time.Duration) ProductOption {
	return func(s *ProductService) {
		s.cache, s.cacheTTL = store, ttl
	}
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductOption) *ProductService {
	s := &ProductService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func listCacheKey(generation string, f models.ProductFilter) string {
	q := url.Values{
		"c":      {f.Category},
		"q":      {f.Search},
		"min":    {decimalKey(f.MinPrice)},
		"max":    {decimalKey(f.MaxPrice)},
		"stock":  {strconv.FormatBool(f.InStockOnly)},
		"active": {strconv.FormatBool(f.ActiveOnly)},
		"sort":   {f.Sort},
		"p":      {strconv.Itoa(f.Page.Number)},
		"n":      {strconv.Itoa(f.Page.Size)},
	}
	return productListPrefix + generation + ":" + q.Encode()
}

func (s *ProductService) generation(ctx context.Context) string {
	b, err := s.cache.Get(ctx, productListGen)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.WarnContext(ctx, "product cache generation read failed", "error", err)
		}
		return "0"
	}
	return string(b)
}

// ListProducts returns one page of products; public listings are cached.
func (s *ProductService) ListProducts(ctx context.Context, f models.ProductFilter) (*models.PagedResult[models.Product], error) {
	f.Page = f.Page.Normalize()
	useCache := s.cache != nil && s.cacheTTL > 0

	var key string
	if useCache {
		key = listCacheKey(s.generation(ctx), f)
		if b, err := s.cache.Get(ctx, key); err == nil {
			var cached models.PagedResult[models.Product]
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			slog.WarnContext(ctx, "product cache read failed", "error", err)
		}
	}

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	result := &models.PagedResult[models.Product]{
		Data:     products,
		Page:     f.Page.Number,
		PageSize: f.Page.Size,
		Total:    total,
	}

	if useCache {
		if b, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
				slog.WarnContext(ctx, "product cache write failed", "error", err)
			}
		}
	}
	return result, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = ""
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrInvalidInput)
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// InvalidateListings drops every cached listing. Order placement and
// cancellation call it since they change stock.
func (s *ProductService) InvalidateListings(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, productListGen, []byte(uuid.NewString()), 0); err != nil {
		slog.WarnContext(ctx, "product cache generation update failed", "error", err)
	}
	if err := s.cache.DeletePrefix(ctx, productListPrefix); err != nil {
		slog.WarnContext(ctx, "product cache invalidation failed", "error", err)
	}
}
