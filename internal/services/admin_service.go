package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardRecentOrders = 5
	dashboardListLimit    = 10
)

// AdminRepos groups the stores the admin service reads. The document-store
// repositories may be nil.
type AdminRepos struct {
	Users     repositories.UserRepository
	Products  repositories.ProductRepository
	Orders    repositories.OrderRepository
	Reports   repositories.ReportRepository
	Contacts  repositories.ContactRepository
	Favorites repositories.FavoriteRepository
	Activity  repositories.ActivityRepository
}

// AdminService serves the dashboard, reports and user management.
type AdminService struct {
	repos             AdminRepos
	lowStockThreshold int
}

func NewAdminService(repos AdminRepos, lowStockThreshold int) *AdminService {
	return &AdminService{repos: repos, lowStockThreshold: lowStockThreshold}
}

// Dashboard loads every section concurrently. Relational sections fail the
// call; document-store sections are logged and left empty.
func (s *AdminService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d := &models.Dashboard{
		OrdersByStatus: []models.StatusCount{},
		LowStock:       []models.Product{},
		RecentOrders:   []models.Order{},
		TopFavorites:   []models.ProductFavoriteCount{},
		RecentActivity: []models.OrderActivity{},
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { d.Users, err = s.repos.Users.Count(gctx); return })
	g.Go(func() (err error) { d.Products, err = s.repos.Products.Count(gctx); return })
	g.Go(func() (err error) { d.Orders, err = s.repos.Orders.Count(gctx); return })
	g.Go(func() (err error) { d.Revenue, err = s.repos.Orders.Revenue(gctx); return })
	g.Go(func() (err error) { d.OrdersByStatus, err = s.repos.Orders.CountByStatus(gctx); return })
	g.Go(func() (err error) {
		d.LowStock, err = s.repos.Products.LowStock(gctx, s.lowStockThreshold, dashboardListLimit)
		return
	})
	g.Go(func() (err error) { d.RecentOrders, err = s.repos.Orders.Recent(gctx, dashboardRecentOrders); return })

	optional := func(section string, load func() error) {
		g.Go(func() error {
			if err := load(); err != nil {
				slog.WarnContext(ctx, "dashboard section unavailable", "section", section, "error", err)
			}
			return nil
		})
	}
	if s.repos.Contacts != nil {
		optional("unread_messages", func() (err error) { d.UnreadMessages, err = s.repos.Contacts.CountUnread(gctx); return })
	}
	if s.repos.Favorites != nil {
		optional("top_favorites", func() error {
			top, err := s.repos.Favorites.TopProducts(gctx, dashboardListLimit)
			if err == nil {
				d.TopFavorites = top
			}
			return err
		})
	}
	if s.repos.Activity != nil {
		optional("recent_activity", func() error {
			recent, err := s.repos.Activity.Recent(gctx, dashboardListLimit)
			if err == nil {
				d.RecentActivity = recent
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return d, nil
}

// SalesReport aggregates orders per day or month.
func (s *AdminService) SalesReport(ctx context.Context, f models.SalesFilter) ([]models.SalesRow, error) {
	switch f.GroupBy {
	case "":
		f.GroupBy = "day"
	case "day", "month":
	default:
		return nil, fmt.Errorf("group_by must be day or month: %w", ErrInvalidInput)
	}
	if f.Status != "" && !ValidOrderStatus(f.Status) {
		return nil, fmt.Errorf("%q: %w", f.Status, ErrInvalidStatus)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		return nil, fmt.Errorf("to must be after from: %w", ErrInvalidInput)
	}
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	return s.repos.Reports.Sales(ctx, f)
}

func (s *AdminService) ListUsers(ctx context.Context, page models.Page) (*models.PagedResult[models.User], error) {
	page = page.Normalize()
	users, total, err := s.repos.Users.List(ctx, page)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return &models.PagedResult[models.User]{Data: users, Page: page.Number, PageSize: page.Size, Total: total}, nil
}

// SetUserRole changes a user's role. Admins cannot change their own role.
func (s *AdminService) SetUserRole(ctx context.Context, actorID, userID, role string) (*models.User, error) {
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return nil, fmt.Errorf("role must be customer or admin: %w", ErrInvalidInput)
	}
	if actorID == userID {
		return nil, ErrSelfAction
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user role changed", "user_id", userID, "role", role, "by", actorID)
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrSelfAction
	}
	if err := s.repos.Users.Delete(ctx, userID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", userID, "by", actorID)
	return nil
}

// ParseReportDate accepts YYYY-MM-DD or RFC 3339.
func ParseReportDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}
