package server

import (
	"tokoshop/internal/cache"
	"tokoshop/internal/config"
	"tokoshop/internal/events"
	"tokoshop/internal/repositories"
	"tokoshop/internal/services"

	"gorm.io/gorm"
)

// Stores are the backends the services run on. Cache and the document-store
// repositories may be nil.
type Stores struct {
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
	Coupons  repositories.CouponRepository
	Reports  repositories.ReportRepository
	UoW      repositories.UnitOfWork

	Favorites repositories.FavoriteRepository
	Contacts  repositories.ContactRepository
	Activity  repositories.ActivityRepository

	Cache     cache.Store
	Publisher events.Publisher
}

// GORMStores fills the relational part of Stores from db.
func GORMStores(db *gorm.DB) Stores {
	return Stores{
		Users:    repositories.NewGORMUserRepository(db),
		Products: repositories.NewGORMProductRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
		Coupons:  repositories.NewGORMCouponRepository(db),
		Reports:  repositories.NewGORMReportRepository(db),
		UoW:      repositories.NewGORMUnitOfWork(db),
	}
}

// Services is the business layer behind the HTTP routes.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Orders    *services.OrderService
	Coupons   *services.CouponService
	Favorites *services.FavoriteService
	Contacts  *services.ContactService
	Admin     *services.AdminService
}

// NewServices wires every service from the stores and the configuration.
func NewServices(cfg *config.Config, st Stores) Services {
	authOpts := []services.AuthOption{services.WithTokenTTL(cfg.Auth.TokenTTL)}
	var productOpts []services.ProductOption
	var orderOpts []services.OrderOption
	if st.Cache != nil {
		authOpts = append(authOpts, services.WithLoginRateLimit(st.Cache, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow))
		productOpts = append(productOpts, services.WithProductCache(st.Cache, cfg.Shop.ProductCacheTTL))
		orderOpts = append(orderOpts, services.WithIdempotency(st.Cache, cfg.Shop.IdempotencyTTL))
	}

	products := services.NewProductService(st.Products, productOpts...)
	orderOpts = append(orderOpts, services.WithCatalog(products))

	svc := Services{
		Auth:     services.NewAuthService(st.Users, cfg.Auth.JWTSecret, authOpts...),
		Products: products,
		Orders:   services.NewOrderService(st.UoW, st.Orders, st.Publisher, orderOpts...),
		Coupons:  services.NewCouponService(st.Coupons),
		Admin: services.NewAdminService(services.AdminRepos{
			Users:     st.Users,
			Products:  st.Products,
			Orders:    st.Orders,
			Reports:   st.Reports,
			Contacts:  st.Contacts,
			Favorites: st.Favorites,
			Activity:  st.Activity,
		}, cfg.Shop.LowStockThreshold),
	}
	if st.Favorites != nil {
		svc.Favorites = services.NewFavoriteService(st.Favorites, st.Products)
	}
	if st.Contacts != nil {
		svc.Contacts = services.NewContactService(st.Contacts)
	}
	return svc
}
