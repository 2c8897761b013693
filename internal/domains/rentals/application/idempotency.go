package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

type normalizedOrderRequest struct {
	CustomerID int64            `json:"customerId"`
	Items      []normalizedItem `json:"items"`
}

type normalizedItem struct {
	VariantID int64  `json:"variantId"`
	Quantity  int    `json:"quantity"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// FingerprintOrder builds a deterministic hash of the order request, excluding the idempotency key.
func FingerprintOrder(input ports.CreateOrderInput) (string, error) {
	normalized := normalizedOrderRequest{
		CustomerID: input.Caller.UserID,
		Items:      make([]normalizedItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Start:     item.Period.Start.UTC().Format(time.RFC3339Nano),
			End:       item.Period.End.UTC().Format(time.RFC3339Nano),
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
