//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "rentals-api"
	ConsumerName = "rental-storefront"

	StateCatalogSeeded = "demo catalog seeded"
	StateKayakSoldOut  = "every kayak is reserved for June 10-12 2030"
	StateOrderMissing  = "no order with id 404"
)

const (
	CustomerID int64 = 10
	VendorID   int64 = 100

	TentVariantID  int64 = 1
	KayakVariantID int64 = 3
	MissingOrderID int64 = 404

	StartDate = "2030-06-10"
	EndDate   = "2030-06-12"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is a single tent for two nights.
func ExampleOrderRequest(variantID int64, quantity int) map[string]any {
	return map[string]any{
		"items": []map[string]any{{
			"variantId": variantID,
			"quantity":  quantity,
			"startDate": StartDate,
			"endDate":   EndDate,
		}},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
