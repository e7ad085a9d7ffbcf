package usecase

import (
	"context"
	"net/http"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const dashboardListSize = 5

type DashboardUsecase struct {
	users      repo.UserRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository
	orders     repo.OrderRepository
}

func NewDashboardUsecase(users repo.UserRepository, products repo.ProductRepository, categories repo.CategoryRepository, orders repo.OrderRepository) *DashboardUsecase {
	return &DashboardUsecase{users: users, products: products, categories: categories, orders: orders}
}

type DashboardOutput struct {
	TotalUsers      int64           `json:"total_users"`
	TotalAdmins     int64           `json:"total_admins"`
	TotalStaff      int64           `json:"total_staff"`
	TotalCustomers  int64           `json:"total_customers"`
	TotalProducts   int64           `json:"total_products"`
	TotalCategories int64           `json:"total_categories"`
	TotalOrders     int64           `json:"total_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
	LowStock        []model.Product `json:"low_stock"`
	NewestProducts  []model.Product `json:"newest_products"`
	RecentUsers     []UserOutput    `json:"recent_users"`
}

// Get runs every dashboard query concurrently; the first failure cancels the rest.
func (u *DashboardUsecase) Get(ctx context.Context) (DashboardOutput, error) {
	var out DashboardOutput
	var recent []model.User

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}

	count(&out.TotalUsers, u.users.Count)
	count(&out.TotalAdmins, func(c context.Context) (int64, error) { return u.users.CountByRole(c, model.RoleAdmin) })
	count(&out.TotalStaff, func(c context.Context) (int64, error) { return u.users.CountByRole(c, model.RoleStaff) })
	count(&out.TotalCustomers, func(c context.Context) (int64, error) { return u.users.CountByRole(c, model.RoleCustomer) })
	count(&out.TotalProducts, u.products.Count)
	count(&out.TotalCategories, u.categories.Count)
	count(&out.TotalOrders, u.orders.Count)

	g.Go(func() error {
		rev, err := u.orders.Revenue(gctx)
		out.Revenue = rev
		return err
	})
	g.Go(func() error {
		items, err := u.products.LowStock(gctx, DefaultLowStockThreshold)
		out.LowStock = items
		return err
	})
	g.Go(func() error {
		items, err := u.products.Newest(gctx, dashboardListSize)
		out.NewestProducts = items
		return err
	})
	g.Go(func() error {
		items, err := u.users.Recent(gctx, dashboardListSize)
		recent = items
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out.RecentUsers = make([]UserOutput, 0, len(recent))
	for _, usr := range recent {
		out.RecentUsers = append(out.RecentUsers, ToUserOutput(usr))
	}
	return out, nil
}
