// Package handlers exposes the rentals use cases over gin.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	"github.com/Apurer/go-rental-api/internal/platform/identity"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// HeaderIdempotencyKey lets clients retry order placement safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// API wires HTTP transport to the rentals services.
type API struct {
	ledger    ports.LedgerService
	orders    ports.OrderService
	placement ports.OrderPlacement
	responder *apierrors.Responder
}

// New creates the API. placement may be nil, in which case orders are created inline.
func New(ledger ports.LedgerService, orders ports.OrderService, placement ports.OrderPlacement, responder *apierrors.Responder) *API {
	if responder == nil {
		responder = apierrors.NewResponder()
	}
	return &API{ledger: ledger, orders: orders, placement: placement, responder: responder}
}

// Register mounts the routes. Availability is public; everything on authed must sit
// behind the identity middleware.
func (api *API) Register(public, authed *gin.RouterGroup) {
	public.GET("/reservations/availability", api.CheckAvailability)

	reservations := authed.Group("/reservations")
	reservations.POST("", api.Reserve)
	reservations.GET("", api.ListReservations)
	reservations.GET("/:id", api.GetReservation)
	reservations.DELETE("/:id", api.CancelReservation)
	reservations.POST("/:id/complete", api.CompleteReservation)

	orders := authed.Group("/orders")
	orders.POST("", api.CreateOrder)
	orders.GET("", api.ListOrders)
	orders.GET("/:id", api.GetOrder)
	orders.POST("/:id/confirm", api.ConfirmOrder)
	orders.DELETE("/:id", api.CancelOrder)
}

func (api *API) caller(c *gin.Context) (domain.Caller, bool) {
	principal, ok := identity.FromGin(c)
	if !ok {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("caller identity missing"))
		return domain.Caller{}, false
	}
	caller := domain.Caller{UserID: principal.UserID, Role: domain.ParseRole(principal.Role)}
	if caller.Role == "" {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("unknown "+identity.HeaderUserRole+" header"))
		return domain.Caller{}, false
	}
	return caller, true
}

func (api *API) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"id": "must be a positive integer"}))
		return 0, false
	}
	return id, true
}

func (api *API) fail(c *gin.Context, err error) {
	api.responder.RespondError(c, err)
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
