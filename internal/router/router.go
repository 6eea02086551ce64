// internal/router/router.go
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/handlers"
	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/repository"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

// Store is everything the HTTP layer needs from persistence. Both
// repository.GormStore and repository.MemoryStore satisfy it.
type Store interface {
	repository.CatalogRepository
	repository.CartRepository
	repository.OrderRepository
	repository.IdentityRepository
	repository.AddressRepository
	repository.AuditRepository
	repository.StatsRepository
}

// Dependencies lets callers swap the parts that talk to the outside world.
type Dependencies struct {
	Store    Store
	Gateway  services.PaymentGateway
	Storage  *services.StorageService
	Limiters *Limiters
}

type Limiters struct {
	General *middleware.RateLimiter
	Cart    *middleware.RateLimiter
	Upload  *middleware.RateLimiter
}

func NewLimiters(cfg config.RateLimitConfig) *Limiters {
	return &Limiters{
		General: middleware.NewRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		Cart:    middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(max(cfg.CartPerMinute, 1))), max(cfg.CartPerMinute/2, 1)),
		Upload:  middleware.NewRateLimiter(rate.Every(time.Minute), 10),
	}
}

func Initialize(deps Dependencies, cfg *config.Config) (*gin.Engine, error) {
	fees, err := cfg.Shipping.Fees()
	if err != nil {
		return nil, fmt.Errorf("invalid shipping fees: %w", err)
	}

	storageService := deps.Storage
	if storageService == nil {
		if storageService, err = services.NewStorageService(cfg); err != nil {
			return nil, err
		}
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = services.NewStripeGateway(cfg.Payment.StripeSecretKey)
	}
	limiters := deps.Limiters
	if limiters == nil {
		limiters = NewLimiters(cfg.RateLimit)
	}

	// Initialize services
	store := deps.Store
	identityService := services.NewIdentityService(store)
	catalogService := services.NewCatalogService(store, storageService)
	cartService := services.NewCartService(store, store)
	checkoutService := services.NewCheckoutService(store, store, store, fees)
	orderService := services.NewOrderService(store)
	notificationService := services.NewNotificationService(cfg.Email)
	checkoutService.SetNotifier(notificationService)
	orderService.SetNotifier(notificationService)
	paymentService := services.NewPaymentService(store, gateway, cfg)
	addressService := services.NewAddressService(store)
	adminService := services.NewAdminService(store, store)
	userService := services.NewUserService(store)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	addressHandler := handlers.NewAddressHandler(addressService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(adminService, identityService, orderService)

	utils.SetJWTSecret(cfg.Auth.JWTSecret)
	utils.SetJWTIssuer(cfg.Auth.Issuer)

	authRequired := middleware.AuthRequired(identityService)
	optionalAuth := middleware.OptionalAuth(identityService)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(limiters.General.Middleware())
	r.Use(middleware.AuditLogMiddleware(store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		products.Use(optionalAuth)
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
		}

		cart := v1.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("", cartHandler.GetCart)
			mutations := cart.Group("/items")
			mutations.Use(limiters.Cart.Middleware())
			{
				mutations.POST("", cartHandler.AddItem)
				mutations.PUT("/:id", cartHandler.UpdateItem)
				mutations.DELETE("/:id", cartHandler.RemoveItem)
			}
		}

		checkout := v1.Group("/checkout")
		checkout.Use(authRequired)
		{
			checkout.GET("", checkoutHandler.Preview)
			checkout.POST("/quote", checkoutHandler.Quote)
			checkout.POST("", checkoutHandler.Submit)
		}

		orders := v1.Group("/orders")
		orders.Use(authRequired)
		{
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		payments := v1.Group("/payments")
		payments.Use(authRequired)
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		me := v1.Group("/me")
		me.Use(authRequired)
		{
			me.GET("", userHandler.GetMe)
			me.PUT("", userHandler.UpdateMe)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(authRequired)
		{
			addresses.GET("", addressHandler.GetAddresses)
			addresses.POST("", addressHandler.CreateAddress)
		}

		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.AdminRequired())
		{
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.POST("/:id/images", limiters.Upload.Middleware(), productHandler.UploadProductImage)
			}

			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.PUT("/dealers/:id/tier", adminHandler.UpdateDealerTier)
			admin.PUT("/profiles/:id/role", adminHandler.UpdateProfileRole)

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", adminHandler.GetOrders)
				adminOrders.PUT("/:id/status", adminHandler.UpdateOrderStatus)
				adminOrders.POST("/:id/refund", paymentHandler.RefundOrder)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, nil
}
