package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/mapper"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// availabilityParams are bound from the query string.
type availabilityParams struct {
	VariantID int64
	StartDate string
	EndDate   string
	Quantity  *int
}

// Get /api/v1/reservations/availability
func (api *API) CheckAvailability(c *gin.Context) {
	var params availabilityParams
	query := c.Request.URL.Query()
	fields := map[string]string{}
	if err := runtime.BindQueryParameter("form", true, true, "variantId", query, &params.VariantID); err != nil {
		fields["variantId"] = err.Error()
	}
	if err := runtime.BindQueryParameter("form", true, true, "startDate", query, &params.StartDate); err != nil {
		fields["startDate"] = err.Error()
	}
	if err := runtime.BindQueryParameter("form", true, true, "endDate", query, &params.EndDate); err != nil {
		fields["endDate"] = err.Error()
	}
	if err := runtime.BindQueryParameter("form", true, false, "quantity", query, &params.Quantity); err != nil {
		fields["quantity"] = err.Error()
	}
	if len(fields) > 0 {
		api.responder.Respond(c, apierrors.NewValidationProblem(fields))
		return
	}
	period, err := mapper.ParsePeriod(params.StartDate, params.EndDate)
	if err != nil {
		api.fail(c, err)
		return
	}
	quantity := 1
	if params.Quantity != nil {
		quantity = *params.Quantity
	}
	result, err := api.ledger.CheckAvailability(c.Request.Context(), ports.AvailabilityQuery{
		VariantID: params.VariantID,
		Period:    period,
		Quantity:  quantity,
	})
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromAvailability(result))
}

// Post /api/v1/reservations
func (api *API) Reserve(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	var payload mapper.ReserveRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.RespondBindError(c, err)
		return
	}
	items, err := mapper.ToItemInputs(payload.Items)
	if err != nil {
		api.fail(c, err)
		return
	}
	created, err := api.ledger.Reserve(c.Request.Context(), ports.ReserveInput{
		Caller:  caller,
		OrderID: payload.OrderID,
		Items:   items,
	})
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromReservations(created))
}

// Get /api/v1/reservations
func (api *API) ListReservations(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	statuses, err := mapper.ParseReservationStatuses(c.QueryArray("status"))
	if err != nil {
		api.fail(c, err)
		return
	}
	views, err := api.ledger.ListForCaller(c.Request.Context(), caller, ports.ReservationFilter{Statuses: statuses})
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromReservationViews(views))
}

// Get /api/v1/reservations/:id
func (api *API) GetReservation(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	view, err := api.ledger.Get(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromReservationView(view))
}

// Delete /api/v1/reservations/:id
func (api *API) CancelReservation(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	reservation, err := api.ledger.Cancel(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromReservation(*reservation))
}

// Post /api/v1/reservations/:id/complete
func (api *API) CompleteReservation(c *gin.Context) {
	caller, ok := api.caller(c)
	if !ok {
		return
	}
	id, ok := api.idParam(c)
	if !ok {
		return
	}
	reservation, err := api.ledger.Complete(c.Request.Context(), caller, id)
	if err != nil {
		api.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromReservation(*reservation))
}
