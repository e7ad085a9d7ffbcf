package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"petshop/internal/config"
	"petshop/internal/handler"
	"petshop/internal/infra/db"
	"petshop/internal/infra/idgen"
	infraRepo "petshop/internal/infra/repository"
	"petshop/internal/logger"
	"petshop/internal/middleware"
	"petshop/internal/pricing"
	"petshop/internal/server"
	"petshop/internal/usecase"
	auth "petshop/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Service: "petshop-api", Env: cfg.GoEnv, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rules, err := pricing.LoadRules(cfg.PricingRulesFile)
	if err != nil {
		return err
	}
	engine := pricing.NewCartPricingEngine(rules,
		pricing.WithMaxConcurrentLookups(cfg.PricingMaxConcurrency),
		pricing.WithLogger(log.Named("pricing")),
	)

	// repositories
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	ids := idgen.New()
	clock := idgen.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewJWTSessionTokens(cfg.SessionSecret)

	// auth
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, ids, clock)
	loginUC := auth.NewLoginUsecase(userRepo, sessionRepo, hasher, tokens, ids, clock, cfg.SessionTTL, cfg.RememberMeTTL)
	logoutUC := auth.NewLogoutUsecase(sessionRepo, clock)
	meUC := auth.NewMeUsecase(userRepo)
	resolver := auth.NewSessionResolver(tokens, sessionRepo, userRepo, clock)

	// storefront
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, engine, ids)
	checkoutUC := usecase.NewCheckoutUsecase(txm, userRepo, cartUC, engine, ids, clock, log.Named("checkout"))
	orderUC := usecase.NewOrderUsecase(txm, clock)
	productUC := usecase.NewProductUsecase(productRepo)
	categoryUC := usecase.NewCategoryUsecase(txm, categoryRepo, ids, clock)
	profileUC := usecase.NewProfileUsecase(txm, userRepo, hasher, clock)

	// back office
	staffProductUC := usecase.NewStaffProductUsecase(txm, productRepo, categoryRepo, ids, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock)
	adminUserUC := usecase.NewAdminUserUsecase(txm, userRepo, hasher, ids, clock)
	dashboardUC := usecase.NewDashboardUsecase(userRepo, productRepo, categoryRepo, orderRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, logoutUC, meUC, cfg.CookieSecure),
		Products:     handler.NewProductHandler(productUC),
		Categories:   handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Orders:       handler.NewOrderHandler(orderUC),
		Profile:      handler.NewProfileHandler(profileUC),
		StaffProduct: handler.NewStaffProductHandler(staffProductUC),
		StaffOrders:  handler.NewAdminOrderHandler(adminOrderUC),
		Admin:        handler.NewAdminUserHandler(adminUserUC, dashboardUC, auditUC),
	}

	e := server.New(log, handlers, middleware.SessionAuth(resolver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", zap.String("env", cfg.GoEnv))
	return server.Start(ctx, e, cfg.Addr(), log)
}
