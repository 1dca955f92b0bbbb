package modelmap_test

import (
	"context"
	"strings"
	"testing"
	"time"

	modelmap "github.com/reoring/modelmap"
	"github.com/reoring/modelmap/bind"
	"github.com/reoring/modelmap/coerce"
)

// Source side: a flat-ish order as an upstream service would expose it.
type srcAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type srcCustomer struct {
	Email   string     `json:"email"`
	Address srcAddress `json:"address"`
}

type srcLine struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type srcOrder struct {
	OrderID   string      `json:"order_id"`
	PlacedAt  time.Time   `json:"placed_at"`
	Total     float64     `json:"total"`
	Currency  string      `json:"currency"`
	Customer  srcCustomer `json:"customer"`
	LineItems []srcLine   `json:"line_items"`
}

// Target side: a differently-shaped receipt. Payment and shipping are new
// models assembled from scattered source branches; the line list reuses the
// source list under another field name.
type dstPayment struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

type dstShipping struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type dstLine struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type dstReceipt struct {
	OrderID  string      `json:"order_id"`
	PlacedAt time.Time   `json:"placed_at"`
	Email    string      `json:"email"`
	Payment  dstPayment  `json:"payment"`
	Shipping dstShipping `json:"shipping"`
	Lines    []dstLine   `json:"line_items"`
}

func sampleOrder() srcOrder {
	return srcOrder{
		OrderID:  "ord-42",
		PlacedAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		Total:    59.90,
		Currency: "EUR",
		Customer: srcCustomer{
			Email:   "buyer@example.com",
			Address: srcAddress{Street: "Calle Mayor 1", City: "Madrid"},
		},
		LineItems: []srcLine{
			{SKU: "tea-001", Quantity: 2, Price: 19.95},
			{SKU: "mug-007", Quantity: 1, Price: 20.00},
		},
	}
}

// TestOrderToReceipt_EndToEnd maps a populated order into a receipt and
// materializes it back into a typed struct.
func TestOrderToReceipt_EndToEnd(t *testing.T) {
	ctx := context.Background()
	target, err := bind.SchemaOf(dstReceipt{})
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}

	res, err := modelmap.Build(ctx, srcOf(t, sampleOrder()), target,
		modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.Complete {
		t.Fatalf("expected a complete mapping:\n%s", res.Report())
	}

	var out dstReceipt
	if err := bind.Materialize(res, &out); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if out.OrderID != "ord-42" || out.Email != "buyer@example.com" {
		t.Fatalf("unexpected receipt head: %+v", out)
	}
	if !out.PlacedAt.Equal(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", out.PlacedAt)
	}
	if out.Payment.Total != 59.90 || out.Payment.Currency != "EUR" {
		t.Fatalf("payment assembled wrong: %+v", out.Payment)
	}
	if out.Shipping.City != "Madrid" {
		t.Fatalf("shipping assembled wrong: %+v", out.Shipping)
	}
	if len(out.Lines) != 2 || out.Lines[0].SKU != "tea-001" || out.Lines[1].Quantity != 1 {
		t.Fatalf("lines mapped wrong: %+v", out.Lines)
	}
}

// TestOrderToReceipt_PartialReport drops a branch and checks that the report
// accounts for everything that was lost.
func TestOrderToReceipt_PartialReport(t *testing.T) {
	ctx := context.Background()
	target, err := bind.SchemaOf(dstReceipt{})
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}

	// A thin source without any address branch: shipping has nothing to
	// build from.
	type thinOrder struct {
		OrderID   string    `json:"order_id"`
		PlacedAt  time.Time `json:"placed_at"`
		Total     float64   `json:"total"`
		Currency  string    `json:"currency"`
		Email     string    `json:"email"`
		LineItems []srcLine `json:"line_items"`
	}
	full := sampleOrder()
	thin := thinOrder{
		OrderID: "ord-43", PlacedAt: full.PlacedAt, Total: 10, Currency: "EUR",
		Email: "buyer@example.com", LineItems: full.LineItems,
	}

	res, err := modelmap.Build(ctx, srcOf(t, thin), target,
		modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Complete {
		t.Fatalf("expected a partial mapping, shipping has no source data")
	}
	rep := res.Report()
	if !strings.Contains(rep, "while mapping 'dstReceipt'") {
		t.Fatalf("report must name the target:\n%s", rep)
	}
	if !strings.Contains(rep, modelmap.KindEmptyModel) {
		t.Fatalf("expected an empty_model entry for shipping:\n%s", rep)
	}

	// The partial value still serializes and materialization refuses it.
	var out dstReceipt
	if err := bind.Materialize(res, &out); err == nil {
		t.Fatalf("materializing a partial result must fail")
	}
	if _, err := res.MarshalJSON(); err != nil {
		t.Fatalf("partial result must stay serializable: %v", err)
	}
}
