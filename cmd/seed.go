package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tokoshop/internal/config"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/server"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin account, demo products and sample coupons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Service = "seed"
			cfg.DB.AutoMigrate = true

			ctx := cmd.Context()
			d, err := connect(ctx, cfg, connectOptions{})
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			stores, err := d.stores(ctx)
			if err != nil {
				return err
			}
			return seed(ctx, cfg, stores, opts)
		},
	}
	cmd.Flags().StringVar(&opts.AdminUsername, "admin-username", "admin", "username of the seeded admin")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@tokoshop.local", "email of the seeded admin")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "admin12345", "password of the seeded admin")
	return cmd
}

// seed is idempotent: existing accounts, a non-empty catalog and existing
// coupon codes are left alone.
func seed(ctx context.Context, cfg *config.Config, st server.Stores, opts seedOptions) error {
	svc := server.NewServices(cfg, st)

	if err := seedAdmin(ctx, svc, st.Users, opts); err != nil {
		return err
	}

	count, err := st.Products.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		for i := range demoProducts {
			product := demoProducts[i]
			if err := svc.Products.CreateProduct(ctx, &product); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", product.Name, err)
			}
		}
		slog.Info("seeded products", "count", len(demoProducts))
	}

	for i := range demoCoupons {
		coupon := demoCoupons[i]
		if _, err := st.Coupons.GetByCode(ctx, coupon.Code); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if err := svc.Coupons.Create(ctx, &coupon); err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupon.Code, err)
		}
		slog.Info("seeded coupon", "code", coupon.Code)
	}
	return nil
}

func seedAdmin(ctx context.Context, svc server.Services, users repositories.UserRepository, opts seedOptions) error {
	admin, err := users.GetByUsername(ctx, opts.AdminUsername)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		admin = &models.User{
			Username: opts.AdminUsername,
			Email:    opts.AdminEmail,
			Password: opts.AdminPassword,
			FullName: "Store Administrator",
		}
		if err := svc.Auth.RegisterUser(ctx, admin); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	case err != nil:
		return err
	}

	if admin.IsAdmin() {
		return nil
	}
	admin.Role = models.RoleAdmin
	if err := users.Update(ctx, admin); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}
	slog.Info("seeded admin", "username", admin.Username)
	return nil
}

var demoProducts = []models.Product{
	{Name: "Kemeja Batik Parang", Description: "Kemeja batik cap lengan panjang, katun primisima", Category: "fashion", Price: decimal.NewFromInt(185000), Stock: 40},
	{Name: "Sepatu Kanvas Putih", Description: "Sepatu kanvas unisex dengan sol karet", Category: "fashion", Price: decimal.NewFromInt(320000), Stock: 25},
	{Name: "Kopi Arabika Gayo 250g", Description: "Biji kopi sangrai medium dari Aceh Tengah", Category: "food", Price: decimal.NewFromInt(95000), Stock: 60},
	{Name: "Sambal Bawang Pedas", Description: "Sambal bawang botol 150 ml", Category: "food", Price: decimal.NewFromInt(35000), Stock: 120},
	{Name: "Teh Melati Tubruk", Description: "Teh hitam melati 100 g", Category: "food", Price: decimal.NewFromInt(28000), Stock: 3},
	{Name: "Tas Rotan Bulat", Description: "Tas selempang anyaman rotan buatan tangan", Category: "home", Price: decimal.NewFromInt(275000), Stock: 12},
}

var demoCoupons = []models.Coupon{
	{Code: "WELCOME10", Description: "10% off the first order", DiscountType: models.DiscountPercentage, Value: decimal.NewFromInt(10), MaxDiscount: decimal.NewFromInt(50000), IsActive: true},
	{Code: "HEMAT25K", Description: "Rp25.000 off orders above Rp150.000", DiscountType: models.DiscountFixed, Value: decimal.NewFromInt(25000), MinOrderAmount: decimal.NewFromInt(150000), UsageLimit: 100, IsActive: true},
}
