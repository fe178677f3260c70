package repositories

import (
	"context"
	"fmt"
	"strings"

	"tokoshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var productSorts = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"name":       "name ASC",
}

// List retrieves one filtered page of products.
func (r *GORMProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	page := f.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStockOnly {
		q = q.Where("stock > 0")
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	order, ok := productSorts[f.Sort]
	if !ok {
		order = productSorts["newest"]
	}

	var products []models.Product
	if err := q.Order(order).Order("id").Limit(page.Size).Offset(page.Offset()).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("product with ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// GetByIDs retrieves every existing product among ids.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update updates an existing product in the database, zero values included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if _, err := r.GetByID(ctx, product.ID); err != nil {
		return err
	}
	columns := []string{"name", "description", "category", "image_url", "price", "stock"}
	if product.IsActive != nil {
		columns = append(columns, "is_active")
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select(columns).
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	return r.db.WithContext(ctx).First(product, "id = ?", product.ID).Error
}

// SetStock overwrites the stock level of a product.
func (r *GORMProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", stock)
	if res.Error != nil {
		return fmt.Errorf("failed to set stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Categories lists the distinct non-empty categories.
func (r *GORMProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Distinct().Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// LowStock lists products at or below threshold units, emptiest first.
func (r *GORMProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").Order("name").
		Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// Count returns the number of products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// DecrementStock subtracts qty in a single conditional UPDATE.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	return nil
}

// IncrementStock puts qty units back.
func (r *GORMProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock: %w", res.Error)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
