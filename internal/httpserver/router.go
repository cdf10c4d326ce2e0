package httpserver

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps, settings Settings) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := settings.CORSAllowedOrigins; len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = settings.CORSAllowedOrigins
	}
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors config: %w", err)
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, logger))
	if settings.UploadDir != "" {
		router.Static(storage.PublicPrefix, settings.UploadDir)
	}

	maxUpload := settings.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	h := &handlers{deps: deps, logger: logger, maxUpload: maxUpload}
	requireAuth := authenticate(deps.UserSvc, true)
	optionalAuth := authenticate(deps.UserSvc, false)
	adminOnly := requireRole(domain.RoleAdmin)

	api := router.Group("/api")

	users := api.Group("/users")
	users.POST("/register", h.register)
	users.POST("/login", h.login)
	users.GET("/profile", requireAuth, h.profile)

	api.POST("/guests", h.issueGuest)

	products := api.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/best-seller", h.bestSeller)
	products.GET("/new-arrivals", h.newArrivals)
	products.GET("/similar/:id", h.similarProducts)
	products.GET("/:id", h.getProduct)
	products.POST("", requireAuth, adminOnly, h.createProduct)
	products.PUT("/:id", requireAuth, adminOnly, h.updateProduct)
	products.DELETE("/:id", requireAuth, adminOnly, h.deleteProduct)

	cart := api.Group("/cart", optionalAuth)
	cart.GET("", h.getCart)
	cart.POST("", h.addToCart)
	cart.PUT("", h.updateCartItem)
	cart.DELETE("", h.removeCartItem)
	cart.POST("/merge", requireAuth, h.mergeCart)

	checkout := api.Group("/checkout", requireAuth)
	checkout.POST("", h.beginCheckout)
	checkout.GET("/:id", h.getCheckout)
	checkout.PUT("/:id/pay", h.payCheckout)
	checkout.POST("/:id/finalize", h.finalizeCheckout)

	orders := api.Group("/orders", requireAuth)
	orders.GET("/my-orders", h.myOrders)
	orders.GET("/:id", h.getOrder)

	api.POST("/subscribe", h.subscribe)
	api.POST("/upload", requireAuth, adminOnly, h.uploadImage)

	admin := api.Group("/admin", requireAuth, adminOnly)
	admin.GET("/users", h.adminListUsers)
	admin.POST("/users", h.adminCreateUser)
	admin.PUT("/users/:id", h.adminUpdateUser)
	admin.DELETE("/users/:id", h.adminDeleteUser)
	admin.GET("/products", h.adminListProducts)
	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.getOrder)
	admin.PUT("/orders/:id", h.adminUpdateOrder)
	admin.DELETE("/orders/:id", h.adminDeleteOrder)

	return router, nil
}
