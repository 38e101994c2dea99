package handlers

import (
	"net/http"

	"github.com/SscSPs/nonprofit_ledger/cmd/docs"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/SscSPs/nonprofit_ledger/internal/platform/config"
	"github.com/SscSPs/nonprofit_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	webhookLimiter *limiter.Limiter,
	posthogClient *utils.PosthogClientWrapper,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Public receiver for the payment gateway
	guards := []gin.HandlerFunc{middleware.WebhookSignature(cfg.WebhookSigningSecret)}
	if webhookLimiter != nil {
		guards = append([]gin.HandlerFunc{middleware.RateLimit(webhookLimiter)}, guards...)
	}
	RegisterWebhookReceiver(r, services.Webhook, guards...)

	setupAPIV1Routes(r, cfg, services, posthogClient)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(posthogClient))

	RegisterAccountRoutes(v1, service.Account)
	RegisterPeriodRoutes(v1, service.Period, service.Reporting)
	RegisterJournalRoutes(v1, service.Journal)
	RegisterAutoPostRoutes(v1, service.AutoPoster)
	RegisterWebhookAdminRoutes(v1, service.Webhook)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
