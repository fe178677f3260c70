package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokoshop/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockFavoriteRepository is an in-memory implementation of FavoriteRepository.
type MockFavoriteRepository struct {
	favorites []models.Favorite
	mu        sync.RWMutex
}

func NewMockFavoriteRepository() *MockFavoriteRepository {
	return &MockFavoriteRepository{}
}

func (r *MockFavoriteRepository) Add(_ context.Context, fav *models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.favorites {
		if f.UserID == fav.UserID && f.ProductID == fav.ProductID {
			return fmt.Errorf("favorite %s/%s: %w", fav.UserID, fav.ProductID, ErrDuplicate)
		}
	}
	fav.ID = primitive.NewObjectID()
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	r.favorites = append(r.favorites, *fav)
	return nil
}

func (r *MockFavoriteRepository) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("favorite %s/%s: %w", userID, productID, ErrNotFound)
}

func (r *MockFavoriteRepository) ListByUser(_ context.Context, userID string) ([]models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	favorites := []models.Favorite{}
	for _, f := range r.favorites {
		if f.UserID == userID {
			favorites = append(favorites, f)
		}
	}
	sort.SliceStable(favorites, func(i, j int) bool { return favorites[i].CreatedAt.After(favorites[j].CreatedAt) })
	return favorites, nil
}

func (r *MockFavoriteRepository) Exists(_ context.Context, userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockFavoriteRepository) TopProducts(_ context.Context, limit int) ([]models.ProductFavoriteCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byProduct := make(map[string]int64)
	for _, f := range r.favorites {
		byProduct[f.ProductID]++
	}
	counts := make([]models.ProductFavoriteCount, 0, len(byProduct))
	for id, n := range byProduct {
		counts = append(counts, models.ProductFavoriteCount{ProductID: id, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].ProductID < counts[j].ProductID
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// MockContactRepository is an in-memory implementation of ContactRepository.
type MockContactRepository struct {
	messages []models.ContactMessage
	mu       sync.RWMutex
}

func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{}
}

func (r *MockContactRepository) Create(_ context.Context, msg *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MockContactRepository) List(_ context.Context, unreadOnly bool, page models.Page) ([]models.ContactMessage, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := []models.ContactMessage{}
	for i := len(r.messages) - 1; i >= 0; i-- {
		if !unreadOnly || !r.messages[i].IsRead {
			messages = append(messages, r.messages[i])
		}
	}
	return paginate(messages, page), int64(len(messages)), nil
}

func (r *MockContactRepository) index(id string) (int, error) {
	oid, err := objectID(id)
	if err != nil {
		return -1, err
	}
	for i, m := range r.messages {
		if m.ID == oid {
			return i, nil
		}
	}
	return -1, fmt.Errorf("contact message %s: %w", id, ErrNotFound)
}

func (r *MockContactRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, err := r.index(id)
	if err != nil {
		return err
	}
	r.messages[i].IsRead = true
	return nil
}

func (r *MockContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, err := r.index(id)
	if err != nil {
		return err
	}
	r.messages = append(r.messages[:i], r.messages[i+1:]...)
	return nil
}

func (r *MockContactRepository) CountUnread(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, m := range r.messages {
		if !m.IsRead {
			n++
		}
	}
	return n, nil
}

// MockActivityRepository is an in-memory implementation of ActivityRepository.
type MockActivityRepository struct {
	activity []models.OrderActivity
	mu       sync.RWMutex
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (r *MockActivityRepository) Record(_ context.Context, a *models.OrderActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = primitive.NewObjectID()
	r.activity = append(r.activity, *a)
	return nil
}

func (r *MockActivityRepository) Recent(_ context.Context, limit int) ([]models.OrderActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity := append([]models.OrderActivity(nil), r.activity...)
	sort.SliceStable(activity, func(i, j int) bool { return activity[i].OccurredAt.After(activity[j].OccurredAt) })
	if len(activity) > limit {
		activity = activity[:limit]
	}
	return activity, nil
}
