package services

import (
	"context"
	"errors"
	"fmt"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
)

// FavoriteService manages user bookmarks of products.
type FavoriteService struct {
	favorites repositories.FavoriteRepository
	products  repositories.ProductRepository
}

func NewFavoriteService(favorites repositories.FavoriteRepository, products repositories.ProductRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, products: products}
}

// List returns the user's favorites with their products. Favorites whose
// product no longer exists are skipped.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.FavoriteWithProduct, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []models.FavoriteWithProduct{}, nil
	}

	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]models.FavoriteWithProduct, 0, len(favs))
	for _, f := range favs {
		if p, ok := byID[f.ProductID]; ok {
			out = append(out, models.FavoriteWithProduct{Favorite: f, Product: p})
		}
	}
	return out, nil
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID string) (*models.Favorite, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	fav := &models.Favorite{UserID: userID, ProductID: productID}
	if err := s.favorites.Add(ctx, fav); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrAlreadyFavorited)
		}
		return nil, err
	}
	return fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID string) error {
	return s.favorites.Remove(ctx, userID, productID)
}

func (s *FavoriteService) IsFavorited(ctx context.Context, userID, productID string) (bool, error) {
	return s.favorites.Exists(ctx, userID, productID)
}
