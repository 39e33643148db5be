package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/server/handlers"
	"github.com/mamadbah2/posgate/internal/service/auth"
)

// Handlers bundles the HTTP adapters the router wires up.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Sales    *handlers.SalesHandler
	Scanner  *handlers.ScannerHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authenticator auth.Authenticator, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Devices push decoded frames without a user session.
	r.POST("/scanner/:device/frames", h.Scanner.Frame)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", optionalSession(authenticator), h.Auth.Register)
		authGroup.POST("/logout", requireSession(authenticator), h.Auth.Logout)
	}

	r.GET("/api/users", requireSession(authenticator), requireResource(auth.ResourceUserAdmin), h.Auth.ListUsers)

	products := r.Group("/products", requireSession(authenticator))
	{
		products.GET("", h.Products.List)
		products.GET("/search", h.Products.Search)

		admin := products.Group("", requireResource(auth.ResourceProductAdmin))
		admin.POST("", h.Products.Create)
		admin.PUT("/:id", h.Products.Update)
		admin.DELETE("/:id", h.Products.Delete)
	}

	carts := r.Group("/carts/:terminal", requireSession(authenticator), requireResource(auth.ResourceSales))
	{
		carts.GET("", h.Cart.Get)
		carts.POST("/lookup", h.Cart.Lookup)
		carts.POST("/lines", h.Cart.AddLine)
		carts.PATCH("/lines/:index", h.Cart.ChangeQuantity)
		carts.DELETE("/lines/:index", h.Cart.RemoveLine)
		carts.POST("/checkout", h.Cart.Checkout)
	}

	sales := r.Group("/sales", requireSession(authenticator), requireResource(auth.ResourceHistory))
	{
		sales.GET("", h.Sales.List)
		sales.GET("/export", h.Sales.Export)
	}

	r.GET("/labels/export", requireSession(authenticator), requireResource(auth.ResourceLabels), h.Sales.ExportLabels)

	scanner := r.Group("/scanner/:device", requireSession(authenticator), requireResource(auth.ResourceSales))
	{
		scanner.POST("/start", h.Scanner.Start)
		scanner.POST("/stop", h.Scanner.Stop)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
