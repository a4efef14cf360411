package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/infrastructure/config"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/interfaces/http/handler"
	"github.com/openship/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	System       *handler.SystemHandler
	Orders       *handler.OrderHandler
	Purchases    *handler.PurchaseHandler
	Capabilities *handler.CapabilityHandler
	Webhooks     *handler.WebhookHandler
}

// Options configures the middleware stack
type Options struct {
	Logger           *zap.Logger
	HTTP             config.HTTPConfig
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	// Metrics exposes /metrics when set
	Metrics *middleware.HTTPMetrics
	Auth    middleware.TokenValidator
	// WebhookRateLimit caps deliveries per shop per minute; 0 disables it
	WebhookRateLimit int
	// Swagger serves the API documentation under /swagger
	Swagger bool
}

// NewEngine builds the gin engine with the full middleware stack and every route
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(opts.Logger),
		logger.GinMiddleware(opts.Logger),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanEnricher(),
		middleware.Profiling(opts.ProfilingEnabled),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine)
	for _, g := range apiGroups(opts, h) {
		r.Register(g)
	}
	r.Setup()
	return engine, nil
}

func apiGroups(opts Options, h Handlers) []*DomainGroup {
	auth := middleware.JWTAuth(opts.Auth, opts.Logger)
	var groups []*DomainGroup

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo))
	}
	if h.Orders != nil || h.Capabilities != nil {
		shops := NewDomainGroup("shops", "/shops").Use(auth)
		if h.Orders != nil {
			shops.GET("/orders/search", h.Orders.Search)
		}
		if h.Capabilities != nil {
			shops.POST("/:id/capabilities/:capability", h.Capabilities.ExecuteForShop)
		}
		groups = append(groups, shops)
	}
	if h.Purchases != nil {
		groups = append(groups, NewDomainGroup("carts", "/carts").Use(auth).
			POST("/purchases", h.Purchases.CreatePurchases))
	}
	if h.Purchases != nil || h.Capabilities != nil {
		channels := NewDomainGroup("channels", "/channels").Use(auth)
		if h.Purchases != nil {
			channels.POST("/:id/purchases", h.Purchases.CreateChannelPurchase)
		}
		if h.Capabilities != nil {
			channels.POST("/:id/capabilities/:capability", h.Capabilities.ExecuteForChannel)
		}
		groups = append(groups, channels)
	}
	if h.Capabilities != nil {
		groups = append(groups, NewDomainGroup("oauth", "/o-auth").Use(auth).
			GET("/:kind/:platformId", h.Capabilities.OAuthStart).
			GET("/:kind/callback/:platformId", h.Capabilities.OAuthCallback))
	}
	if h.Webhooks != nil {
		hooks := NewDomainGroup("webhooks", "/webhooks/shop/:shopId")
		if opts.WebhookRateLimit > 0 {
			limiter := middleware.NewRateLimiter(opts.WebhookRateLimit, time.Minute)
			hooks.Use(middleware.RateLimitByKey(limiter, func(c *gin.Context) string { return c.Param("shopId") }))
		}
		hooks.POST("/cancel-order", h.Webhooks.CancelOrder).
			POST("/create-order", h.Webhooks.CreateOrder)
		groups = append(groups, hooks)
	}
	return groups
}
