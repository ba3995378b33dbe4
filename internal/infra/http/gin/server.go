package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"pucisca/internal/infra/config"
	"pucisca/internal/infra/obs"
)

type AvailabilityHTTP interface {
	// WorkerBlocked answers /availability?house=KEY with {"blocked": [...]}.
	WorkerBlocked(c *gin.Context)
	Blocked(c *gin.Context)
	CombinedBlocked(c *gin.Context)
}

type BookingHTTP interface {
	Quote(c *gin.Context)
	CheckCombined(c *gin.Context)
	ComposeInquiry(c *gin.Context)
	ComposeCombinedInquiry(c *gin.Context)
}

type PricingHTTP interface {
	Rates(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Booking      BookingHTTP
	Pricing      PricingHTTP
	RateLimit    gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg.CORSOrigins, obsMW, health, h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// NewRouter builds the gin engine with every route that has a handler.
func NewRouter(origins []string, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	registerDocsRoutes(router)

	limited := router.Group("")
	if h.RateLimit != nil {
		limited.Use(h.RateLimit)
	}
	if h.Availability != nil {
		limited.GET("/availability", h.Availability.WorkerBlocked)
	}

	api := limited.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/properties/:key/availability", h.Availability.Blocked)
		api.GET("/availability/combined/blocked", h.Availability.CombinedBlocked)
	}
	if h.Booking != nil {
		api.GET("/properties/:key/quote", h.Booking.Quote)
		api.POST("/properties/:key/inquiries", h.Booking.ComposeInquiry)
		api.GET("/availability/combined", h.Booking.CheckCombined)
		api.POST("/inquiries/combined", h.Booking.ComposeCombinedInquiry)
	}
	if h.Pricing != nil {
		api.GET("/properties/:key/rates", h.Pricing.Rates)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
