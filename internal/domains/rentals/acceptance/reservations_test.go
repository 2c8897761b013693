package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-rental-api/internal/app/api"
	rentalshttp "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/handlers"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/mapper"
	rentalsmemory "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/memory"
	rentalsapp "github.com/Apurer/go-rental-api/internal/domains/rentals/application"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/platform/identity"
	"github.com/Apurer/go-rental-api/internal/platform/migrations"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

type problemBody struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Extensions map[string]any `json:"extensions"`
}

type rentalsTestContext struct {
	router    http.Handler
	skus      map[string]int64
	responses []*httptest.ResponseRecorder
	lastOrder *mapper.Order
}

func (c *rentalsTestContext) reset() {
	c.router = nil
	c.skus = map[string]int64{}
	c.responses = nil
	c.lastOrder = nil
}

func (c *rentalsTestContext) theDemoCatalogIsLoaded() error {
	store := rentalsmemory.NewStore()
	for _, variant := range migrations.DemoCatalog {
		store.PutVariant(variant)
		c.skus[variant.SKU] = variant.ID
	}
	responder := apierrors.NewResponder(mapper.ProblemFromError)
	rentals := rentalshttp.New(rentalsapp.NewLedger(store), rentalsapp.NewOrders(store), nil, responder)
	c.router = api.NewRouter("rentals-acceptance", rentals, responder)
	return nil
}

func (c *rentalsTestContext) variant(sku string) (int64, error) {
	id, ok := c.skus[sku]
	if !ok {
		return 0, fmt.Errorf("unknown sku %q", sku)
	}
	return id, nil
}

func (c *rentalsTestContext) last() (*httptest.ResponseRecorder, error) {
	if len(c.responses) == 0 {
		return nil, errors.New("no request has been sent")
	}
	return c.responses[len(c.responses)-1], nil
}

func (c *rentalsTestContext) send(method, path string, userID int64, body any, headers map[string]string) (*httptest.ResponseRecorder, error) {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(identity.HeaderUserID, strconv.FormatInt(userID, 10))
		req.Header.Set(identity.HeaderUserRole, string(domain.RoleCustomer))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	c.responses = append(c.responses, rec)
	return rec, nil
}

func (c *rentalsTestContext) placeOrder(customerID int64, key string, lines map[string]int, from, to string) (*httptest.ResponseRecorder, error) {
	items := make([]mapper.Item, 0, len(lines))
	for sku, qty := range lines {
		id, err := c.variant(sku)
		if err != nil {
			return nil, err
		}
		items = append(items, mapper.Item{VariantID: id, Quantity: qty, StartDate: from, EndDate: to})
	}
	headers := map[string]string{}
	if key != "" {
		headers[rentalshttp.HeaderIdempotencyKey] = key
	}
	rec, err := c.send(http.MethodPost, "/api/v1/orders", customerID, mapper.CreateOrderRequest{Items: items}, headers)
	if err != nil {
		return nil, err
	}
	if rec.Code == http.StatusCreated {
		var order mapper.Order
		if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
			return nil, err
		}
		c.lastOrder = &order
	}
	return rec, nil
}

func (c *rentalsTestContext) customerHasOrdered(customerID int64, qty int, sku, from, to string) error {
	rec, err := c.placeOrder(customerID, "", map[string]int{sku: qty}, from, to)
	if err != nil {
		return err
	}
	if rec.Code != http.StatusCreated {
		return fmt.Errorf("expected setup order to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	return nil
}

func (c *rentalsTestContext) customerOrders(customerID int64, qty int, sku, from, to string) error {
	_, err := c.placeOrder(customerID, "", map[string]int{sku: qty}, from, to)
	return err
}

func (c *rentalsTestContext) customerOrdersTwo(customerID int64, qtyA int, skuA string, qtyB int, skuB, from, to string) error {
	_, err := c.placeOrder(customerID, "", map[string]int{skuA: qtyA, skuB: qtyB}, from, to)
	return err
}

func (c *rentalsTestContext) customerOrdersWithKey(customerID int64, qty int, sku, from, to, key string) error {
	_, err := c.placeOrder(customerID, key, map[string]int{sku: qty}, from, to)
	return err
}

func (c *rentalsTestContext) customerCancelsTheOrder(customerID int64) error {
	if c.lastOrder == nil {
		return errors.New("no order has been placed")
	}
	_, err := c.send(http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", c.lastOrder.ID), customerID, nil, nil)
	return err
}

func (c *rentalsTestContext) anyoneChecksAvailability(qty int, sku, from, to string) error {
	id, err := c.variant(sku)
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("variantId", strconv.FormatInt(id, 10))
	query.Set("startDate", from)
	query.Set("endDate", to)
	query.Set("quantity", strconv.Itoa(qty))
	_, err = c.send(http.MethodGet, "/api/v1/reservations/availability?"+query.Encode(), 0, nil, nil)
	return err
}

func (c *rentalsTestContext) theResponseStatusIs(status int) error {
	rec, err := c.last()
	if err != nil {
		return err
	}
	if rec.Code != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	return nil
}

func (c *rentalsTestContext) problem() (*problemBody, error) {
	rec, err := c.last()
	if err != nil {
		return nil, err
	}
	var problem problemBody
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	return &problem, nil
}

func (c *rentalsTestContext) theProblemTypeIs(problemType string) error {
	problem, err := c.problem()
	if err != nil {
		return err
	}
	if problem.Type != problemType {
		return fmt.Errorf("expected problem type %q, got %q", problemType, problem.Type)
	}
	return nil
}

func (c *rentalsTestContext) theProblemReportsAvailable(available int) error {
	problem, err := c.problem()
	if err != nil {
		return err
	}
	got, ok := problem.Extensions["available"].(float64)
	if !ok || int(got) != available {
		return fmt.Errorf("expected %d available, got %v", available, problem.Extensions["available"])
	}
	return nil
}

func (c *rentalsTestContext) unitsAreAvailableAndReservable(available int) error {
	rec, err := c.last()
	if err != nil {
		return err
	}
	var out mapper.AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		return fmt.Errorf("decode availability: %w", err)
	}
	if out.Available != available || !out.CanReserve {
		return fmt.Errorf("expected %d reservable units, got %+v", available, out)
	}
	return nil
}

func (c *rentalsTestContext) theOrderTotalIs(total string) error {
	if c.lastOrder == nil {
		return errors.New("no order has been placed")
	}
	if c.lastOrder.TotalAmount != total {
		return fmt.Errorf("expected total %s, got %s", total, c.lastOrder.TotalAmount)
	}
	return nil
}

func (c *rentalsTestContext) theCancellationMessageIs(message string) error {
	rec, err := c.last()
	if err != nil {
		return err
	}
	var out mapper.CancelOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		return fmt.Errorf("decode cancellation: %w", err)
	}
	if out.Message != message {
		return fmt.Errorf("expected message %q, got %q", message, out.Message)
	}
	return nil
}

func (c *rentalsTestContext) bothResponsesCarryTheSameOrder() error {
	if len(c.responses) < 2 {
		return errors.New("expected two responses")
	}
	var first, second mapper.Order
	if err := json.Unmarshal(c.responses[len(c.responses)-2].Body.Bytes(), &first); err != nil {
		return err
	}
	if err := json.Unmarshal(c.responses[len(c.responses)-1].Body.Bytes(), &second); err != nil {
		return err
	}
	if first.ID == 0 || first.ID != second.ID || first.OrderNumber != second.OrderNumber {
		return fmt.Errorf("expected replayed order %d, got %d", first.ID, second.ID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &rentalsTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the demo catalog is loaded$`, tc.theDemoCatalogIsLoaded)
	ctx.Step(`^customer (\d+) has ordered (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.customerHasOrdered)
	ctx.Step(`^customer (\d+) orders (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.customerOrders)
	ctx.Step(`^customer (\d+) orders (\d+) "([^"]*)" and (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.customerOrdersTwo)
	ctx.Step(`^customer (\d+) orders (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)" with idempotency key "([^"]*)"$`, tc.customerOrdersWithKey)
	ctx.Step(`^customer (\d+) cancels the order$`, tc.customerCancelsTheOrder)
	ctx.Step(`^anyone checks availability of (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.anyoneChecksAvailability)

	ctx.Step(`^the response status is (\d+)$`, tc.theResponseStatusIs)
	ctx.Step(`^the problem type is "([^"]*)"$`, tc.theProblemTypeIs)
	ctx.Step(`^the problem reports (\d+) available$`, tc.theProblemReportsAvailable)
	ctx.Step(`^(\d+) units are available and the request can be reserved$`, tc.unitsAreAvailableAndReservable)
	ctx.Step(`^the order total is "([^"]*)"$`, tc.theOrderTotalIs)
	ctx.Step(`^the cancellation message is "([^"]*)"$`, tc.theCancellationMessageIs)
	ctx.Step(`^both responses carry the same order$`, tc.bothResponsesCarryTheSameOrder)
}

func TestFeatures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
