package main

import (
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/payment"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envはローカル用。本番は環境変数で渡す。
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Variant{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//決済プロバイダクライアント
	processor := payment.NewHTTPClient(
		cfg.PaymentAPIBase,
		cfg.PaymentAPIKey,
		time.Duration(cfg.PaymentTimeoutSec)*time.Second,
	)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager,
		cartUC,
		processor,
		validator.NewCheckoutValidator(),
		idGen,
		clock,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
	)
	webhookUC := usecase.NewWebhookUsecase(txManager, cfg.PaymentWebhookSecret, clock, log)
	orderUC := usecase.NewOrderUsecase(txManager, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, clock)
	auditLogUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC)
	webhookH := handler.NewWebhookHandler(webhookUC)
	orderH := handler.NewOrderHandler(orderUC)
	adminOrderH := handler.NewAdminOrderHandler(adminOrderUC)
	adminAuditH := handler.NewAdminAuditLogHandler(auditLogUC)

	//ルーティング
	e := server.New()
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e)
	webhookH.RegisterRoutes(e)
	checkoutH.RegisterRoutes(e, cfg, userRepo)
	orderH.RegisterRoutes(e, cfg, userRepo)
	adminOrderH.RegisterRoutes(e, cfg, userRepo)
	adminAuditH.RegisterRoutes(e, cfg, userRepo)

	//Server起動
	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
