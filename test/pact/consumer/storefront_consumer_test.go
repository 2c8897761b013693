//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-rental-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type availabilityPayload struct {
	VariantID  int64 `json:"variantId"`
	Available  int   `json:"available"`
	CanReserve bool  `json:"canReserve"`
}

type orderPayload struct {
	ID           int64  `json:"id"`
	OrderNumber  string `json:"orderNumber"`
	Status       string `json:"status"`
	TotalAmount  string `json:"totalAmount"`
	Reservations []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"reservations"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status  int
	problem problemDetail
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.problem.Title, e.problem.Detail, e.status)
}

func TestStorefrontContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.Regex("application/problem+json", "application\\/problem\\+json(?:;\\s?charset=utf-8)?")
	money := func(example string) matchers.Matcher { return matchers.Term(example, `^\d+\.\d{2}$`) }
	customerHeaders := func(b *pactconsumer.V2RequestBuilder) {
		b.Header("X-User-ID", matchers.S(strconv.FormatInt(pacttest.CustomerID, 10)))
		b.Header("X-User-Role", matchers.S("CUSTOMER"))
	}

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("an anonymous availability check").
		WithRequest("GET", "/api/v1/reservations/availability", func(b *pactconsumer.V2RequestBuilder) {
			b.Query("variantId", matchers.S(strconv.FormatInt(pacttest.TentVariantID, 10)))
			b.Query("startDate", matchers.S(pacttest.StartDate))
			b.Query("endDate", matchers.S(pacttest.EndDate))
			b.Query("quantity", matchers.S("2"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"variantId":         matchers.Like(pacttest.TentVariantID),
				"requestedQuantity": matchers.Like(2),
				"available":         matchers.Like(5),
				"total":             matchers.Like(5),
				"reserved":          matchers.Like(0),
				"canReserve":        matchers.Like(true),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a customer placing an order").
		WithRequest("POST", "/api/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			customerHeaders(b)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleOrderRequest(pacttest.TentVariantID, 1))
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":          matchers.Like(1),
				"orderNumber": matchers.Term("ORD-20300101-0042", `^ORD-\d{8}-\d{4}$`),
				"customerId":  matchers.Like(pacttest.CustomerID),
				"vendorId":    matchers.Like(pacttest.VendorID),
				"status":      matchers.Term("PENDING", "PENDING|CONFIRMED|CANCELLED|COMPLETED"),
				"subtotal":    money("40.00"),
				"tax":         money("7.20"),
				"totalAmount": money("47.20"),
				"reservations": matchers.ArrayMinLike(matchers.Map{
					"id":        matchers.Like(1),
					"variantId": matchers.Like(pacttest.TentVariantID),
					"quantity":  matchers.Like(1),
					"status":    matchers.Term("ACTIVE", "ACTIVE|CANCELLED|COMPLETED"),
				}, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateKayakSoldOut).
		UponReceiving("an order for a sold out kayak").
		WithRequest("POST", "/api/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			customerHeaders(b)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleOrderRequest(pacttest.KayakVariantID, 1))
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/insufficient-availability"),
				"title":  matchers.S("Insufficient Availability"),
				"status": matchers.Like(http.StatusConflict),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/api/v1/orders/%d", pacttest.MissingOrderID), customerHeaders).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		availability, err := client.CheckAvailability(ctx, pacttest.TentVariantID, 2)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !availability.CanReserve {
			return fmt.Errorf("expected tent to be reservable")
		}

		order, err := client.PlaceOrder(ctx, pacttest.TentVariantID, 1)
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if order.ID == 0 || len(order.Reservations) == 0 {
			return fmt.Errorf("expected order with reservations, got %+v", order)
		}

		if _, err := client.PlaceOrder(ctx, pacttest.KayakVariantID, 1); err == nil {
			return fmt.Errorf("expected sold out kayak to be rejected")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusConflict {
			return fmt.Errorf("expected 409, got %v", err)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %d", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", config.Host, config.Port),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *storefrontClient) CheckAvailability(ctx context.Context, variantID int64, quantity int) (*availabilityPayload, error) {
	query := url.Values{}
	query.Set("variantId", strconv.FormatInt(variantID, 10))
	query.Set("startDate", pacttest.StartDate)
	query.Set("endDate", pacttest.EndDate)
	query.Set("quantity", strconv.Itoa(quantity))
	var out availabilityPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/reservations/availability?"+query.Encode(), nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *storefrontClient) PlaceOrder(ctx context.Context, variantID int64, quantity int) (*orderPayload, error) {
	var out orderPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", pacttest.ExampleOrderRequest(variantID, quantity), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *storefrontClient) GetOrder(ctx context.Context, id int64) (*orderPayload, error) {
	var out orderPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", id), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *storefrontClient) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-User-ID", strconv.FormatInt(pacttest.CustomerID, 10))
		req.Header.Set("X-User-Role", "CUSTOMER")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(resp.Body).Decode(&problem)
		return apiError{status: resp.StatusCode, problem: problem}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
