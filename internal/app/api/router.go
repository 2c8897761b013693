package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/handlers"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/platform/identity"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// NewRouter mounts the health check, the public availability route and the
// identity-guarded /api/v1 routes.
func NewRouter(serviceName string, rentals *handlers.API, responder *apierrors.Responder) *gin.Engine {
	apierrors.UseJSONFieldNames()
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router.GET("/healthz", handlers.Healthz)

	public := router.Group("/api/v1")
	authed := router.Group("/api/v1", identity.Middleware(responder, domain.RoleNames()...))
	rentals.Register(public, authed)
	return router
}
