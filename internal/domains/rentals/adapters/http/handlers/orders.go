package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/mapper"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// Post /api/v1/orders
func (api *API) CreateOrder(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	var payload mapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.RespondBindError(c, err)
		return
	}
	items, err := mapper.ToItemInputs(payload.Items)
	if err != nil {
		api.fail(c, err)
		return
	}
	order, err := api.placeOrder(c.Request.Context(), ports.CreateOrderInput{
		Caller:         caller,
		Items:          items,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromOrder(order))
}

func (api *API) placeOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if api.placement != nil {
		return api.placement.PlaceOrder(ctx, input)
	}
	return api.orders.CreateOrder(ctx, input)
}

// Get /api/v1/orders
func (api *API) ListOrders(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	query := c.Request.URL.Query()
	var page, limit int
	fields := map[string]string{}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil {
		fields["page"] = err.Error()
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		fields["limit"] = err.Error()
	}
	if len(fields) > 0 {
		api.responder.Respond(c, apierrors.NewValidationProblem(fields))
		return
	}
	status, err := mapper.ParseOrderStatus(c.Query("status"))
	if err != nil {
		api.fail(c, err)
		return
	}
	summaries, err := api.orders.ListOrders(c.Request.Context(), caller, ports.OrderFilter{Status: status, Page: page, Limit: limit})
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrderSummaries(summaries))
}

// Get /api/v1/orders/:id
func (api *API) GetOrder(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	order, err := api.orders.GetOrder(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrder(order))
}

// Post /api/v1/orders/:id/confirm
func (api *API) ConfirmOrder(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	order, err := api.orders.ConfirmOrder(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrder(order))
}

// Delete /api/v1/orders/:id
func (api *API) CancelOrder(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	result, err := api.orders.CancelOrder(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromCancellation(result.Order, result.Released))
}
