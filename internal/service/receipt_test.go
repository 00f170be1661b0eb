package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

func newReceiptFixture(products ...models.Product) (*Receipts, *fakeProducts, *fakeReceipts, *fakeInventory, *fakeEvents) {
	fp := newFakeProducts(products...)
	fr := &fakeReceipts{}
	fi := &fakeInventory{}
	fe := &fakeEvents{}
	log := zap.NewNop()
	stock := NewStock(fp, fi, fe, log)
	return NewReceipts(fr, fp, stock, fe, log), fp, fr, fi, fe
}

func TestRecordReceipt(t *testing.T) {
	svc, fp, fr, fi, fe := newReceiptFixture(trackedProduct(10, "latte", 8))
	received := 100.0
	change := 12.5

	result, err := svc.Record(context.Background(), ReceiptDraft{
		ReceiptNumber:  "TRX-001",
		Subtotal:       79.55,
		Tax:            7.95,
		Total:          87.5,
		PaymentMethod:  "cash",
		AmountReceived: &received,
		Change:         &change,
	}, []ReceiptItemDraft{{ProductID: 10, Quantity: 2, UnitPrice: 39.775, Total: 79.55}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Receipt.ID == 0 {
		t.Fatal("expected persisted receipt id")
	}
	if len(result.Receipt.Items) != 1 || result.Receipt.Items[0].ProductName != "latte" {
		t.Fatalf("expected product name resolved onto the line, got %+v", result.Receipt.Items)
	}
	if len(result.Stock.Applied) != 1 || result.Stock.Applied[0].NewStock != 6 {
		t.Fatalf("expected stock decremented to 6, got %+v", result.Stock)
	}
	if fp.stockOf(10) != 6 {
		t.Fatalf("expected stock 6, got %d", fp.stockOf(10))
	}
	if fi.count() != 1 {
		t.Fatalf("expected one audit row, got %d", fi.count())
	}
	if len(fr.receipts) != 1 {
		t.Fatalf("expected one stored receipt, got %d", len(fr.receipts))
	}
	if !fe.has("receipt.created") {
		t.Fatal("expected receipt.created event")
	}
}

func TestRecordReceiptShortfallDoesNotVoidReceipt(t *testing.T) {
	svc, fp, fr, _, _ := newReceiptFixture(trackedProduct(10, "latte", 1))

	result, err := svc.Record(context.Background(), ReceiptDraft{
		ReceiptNumber: "TRX-002",
		Total:         100,
		PaymentMethod: "card",
	}, []ReceiptItemDraft{{ProductID: 10, Quantity: 3, UnitPrice: 33.3, Total: 100}})
	if err != nil {
		t.Fatalf("the payment already happened, shortfall must not fail it: %v", err)
	}
	if len(result.Stock.Failed) != 1 {
		t.Fatalf("expected the shortfall reported, got %+v", result.Stock)
	}
	if fp.stockOf(10) != 1 {
		t.Fatalf("refused decrement must leave stock unchanged, got %d", fp.stockOf(10))
	}
	if len(fr.receipts) != 1 {
		t.Fatal("receipt must be persisted despite the shortfall")
	}
}

func TestRecordReceiptValidation(t *testing.T) {
	svc, _, fr, _, _ := newReceiptFixture(trackedProduct(10, "latte", 8))

	cases := []struct {
		name  string
		draft ReceiptDraft
		items []ReceiptItemDraft
	}{
		{
			name:  "missing receipt number",
			draft: ReceiptDraft{PaymentMethod: "cash"},
			items: []ReceiptItemDraft{{ProductID: 10, Quantity: 1}},
		},
		{
			name:  "missing payment method",
			draft: ReceiptDraft{ReceiptNumber: "TRX-003"},
			items: []ReceiptItemDraft{{ProductID: 10, Quantity: 1}},
		},
		{
			name:  "no items",
			draft: ReceiptDraft{ReceiptNumber: "TRX-004", PaymentMethod: "cash"},
			items: nil,
		},
		{
			name:  "zero quantity",
			draft: ReceiptDraft{ReceiptNumber: "TRX-005", PaymentMethod: "cash"},
			items: []ReceiptItemDraft{{ProductID: 10, Quantity: 0}},
		},
		{
			name:  "unknown product",
			draft: ReceiptDraft{ReceiptNumber: "TRX-006", PaymentMethod: "cash"},
			items: []ReceiptItemDraft{{ProductID: 999, Quantity: 1}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.draft, tc.items)
			var verr *store.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(fr.receipts) != 0 {
		t.Fatalf("rejected drafts must not persist receipts, found %d", len(fr.receipts))
	}
}
