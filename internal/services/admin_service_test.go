package services_test

import (
	"context"
	"errors"
	"testing"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingActivity struct{}

func (failingActivity) Record(context.Context, *models.OrderActivity) error { return errors.New("mongo down") }

func (failingActivity) Recent(context.Context, int) ([]models.OrderActivity, error) {
	return nil, errors.New("mongo down")
}

type stubReports struct {
	got models.SalesFilter
}

func (s *stubReports) Sales(_ context.Context, f models.SalesFilter) ([]models.SalesRow, error) {
	s.got = f
	return []models.SalesRow{}, nil
}

func TestAdminService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	users := repositories.NewMockUserRepository()
	contacts := repositories.NewMockContactRepository()
	require.NoError(t, users.Create(ctx, &models.User{Username: "alice", Email: "a@example.com", Password: "x"}))
	require.NoError(t, contacts.Create(ctx, &models.ContactMessage{Name: "Bob", Email: "b@example.com", Subject: "Hi", Message: "Hello there"}))
	p := f.product(t, "Scarce", "10.00", 3)

	order, _, err := f.service.PlaceOrder(ctx, "u1", checkout(services.PlaceOrderItem{ProductID: p.ID, Quantity: 1}), "")
	require.NoError(t, err)
	_, err = f.service.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)

	admin := services.NewAdminService(services.AdminRepos{
		Users:     users,
		Products:  f.products,
		Orders:    f.orders,
		Reports:   &stubReports{},
		Contacts:  contacts,
		Favorites: repositories.NewMockFavoriteRepository(),
		Activity:  failingActivity{},
	}, 5)

	d, err := admin.Dashboard(ctx)
	require.NoError(t, err, "an unavailable activity feed must not fail the dashboard")
	assert.EqualValues(t, 1, d.Users)
	assert.EqualValues(t, 1, d.Orders)
	assert.True(t, d.Revenue.Equal(dec("10")))
	assert.EqualValues(t, 1, d.UnreadMessages)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, 2, d.LowStock[0].Stock)
	assert.Empty(t, d.RecentActivity)
	assert.Len(t, d.RecentOrders, 1)
}

func TestAdminService_SalesReportValidation(t *testing.T) {
	ctx := context.Background()
	reports := &stubReports{}
	admin := services.NewAdminService(services.AdminRepos{Reports: reports}, 5)

	_, err := admin.SalesReport(ctx, models.SalesFilter{GroupBy: "week"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = admin.SalesReport(ctx, models.SalesFilter{Status: "lost"})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	from, err := services.ParseReportDate("2024-03-01")
	require.NoError(t, err)
	to, err := services.ParseReportDate("2024-02-01")
	require.NoError(t, err)
	_, err = admin.SalesReport(ctx, models.SalesFilter{From: from, To: to})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = admin.SalesReport(ctx, models.SalesFilter{From: to, To: from})
	require.NoError(t, err)
	assert.Equal(t, "day", reports.got.GroupBy)

	_, err = services.ParseReportDate("yesterday")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestAdminService_UserManagement(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	admin := services.NewAdminService(services.AdminRepos{Users: mockRepo}, 5)

	_, err := admin.SetUserRole(ctx, "a1", "a1", models.RoleCustomer)
	assert.ErrorIs(t, err, services.ErrSelfAction)
	_, err = admin.SetUserRole(ctx, "a1", "u1", "superuser")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.ErrorIs(t, admin.DeleteUser(ctx, "a1", "a1"), services.ErrSelfAction)

	mockRepo.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1", Password: "hash", Role: models.RoleCustomer}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool { return u.Role == models.RoleAdmin })).Return(nil).Once()
	promoted, err := admin.SetUserRole(ctx, "a1", "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	assert.Empty(t, promoted.Password)

	mockRepo.On("Delete", ctx, "u1").Return(nil).Once()
	assert.NoError(t, admin.DeleteUser(ctx, "a1", "u1"))
	mockRepo.AssertExpectations(t)
}
