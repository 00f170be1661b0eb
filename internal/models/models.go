package models

import "time"

// Order statuses. Transitions between known statuses are unrestricted so
// front-of-house staff can move an order backwards to correct a mistake;
// "paid" and "cancelled" take an order out of the active set.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// ActiveOrderStatuses are the statuses that keep a table occupied.
var ActiveOrderStatuses = []string{OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderServed}

var knownOrderStatuses = map[string]bool{
	OrderPending:   true,
	OrderConfirmed: true,
	OrderPreparing: true,
	OrderReady:     true,
	OrderServed:    true,
	OrderPaid:      true,
	OrderCancelled: true,
}

func KnownOrderStatus(status string) bool {
	return knownOrderStatuses[status]
}

func ActiveOrderStatus(status string) bool {
	for _, s := range ActiveOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Table statuses.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

// Sales channels.
const (
	ChannelTable = "table"
	ChannelPOS   = "pos"
)

// Stock adjustment modes.
const (
	StockAdd      = "add"
	StockSubtract = "subtract"
	StockSet      = "set"
)

func KnownStockMode(mode string) bool {
	return mode == StockAdd || mode == StockSubtract || mode == StockSet
}

// Purchase receipt statuses.
const (
	PurchasePending           = "pending"
	PurchasePartiallyReceived = "partially_received"
	PurchaseReceived          = "received"
)

type Product struct {
	ID               int64   `json:"id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	BeforeTaxPrice   float64 `json:"beforeTaxPrice"`
	AfterTaxPrice    float64 `json:"afterTaxPrice"`
	TaxRate          string  `json:"taxRate"`
	PriceIncludesTax bool    `json:"priceIncludesTax"`
	TrackInventory   bool    `json:"trackInventory"`
	Stock            int     `json:"stock"`
	IsActive         bool    `json:"isActive"`
}

type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	Status          string     `json:"status"`
	TableID         *int64     `json:"tableId"`
	EmployeeID      *int64     `json:"employeeId"`
	CustomerName    string     `json:"customerName"`
	CustomerCount   int        `json:"customerCount"`
	Subtotal        float64    `json:"subtotal"`
	Tax             float64    `json:"tax"`
	Discount        float64    `json:"discount"`
	Total           float64    `json:"total"`
	PaymentMethod   *string    `json:"paymentMethod"`
	PaymentStatus   string     `json:"paymentStatus"`
	PriceIncludeTax bool       `json:"priceIncludeTax"`
	SalesChannel    string     `json:"salesChannel"`
	Notes           *string    `json:"notes"`
	OrderedAt       time.Time  `json:"orderedAt"`
	PaidAt          *time.Time `json:"paidAt"`
	ServedAt        *time.Time `json:"servedAt"`
}

type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"orderId"`
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
	Discount  float64 `json:"discount"`
	Notes     *string `json:"notes"`

	// Joined from products on reads; empty on writes.
	ProductName string `json:"productName,omitempty"`
	ProductSKU  string `json:"productSku,omitempty"`
}

type Table struct {
	ID          int64  `json:"id"`
	TableNumber string `json:"tableNumber"`
	Status      string `json:"status"`
}

// InventoryTransaction is the append-only audit trail of a stock mutation.
type InventoryTransaction struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Receipt is a completed point-of-sale transaction. Unlike an Order it has no
// status machine; it is written once with its items and never mutated.
type Receipt struct {
	ID             int64         `json:"id"`
	ReceiptNumber  string        `json:"receiptNumber"`
	CashierID      *int64        `json:"cashierId"`
	Subtotal       float64       `json:"subtotal"`
	Tax            float64       `json:"tax"`
	Discount       float64       `json:"discount"`
	Total          float64       `json:"total"`
	PaymentMethod  string        `json:"paymentMethod"`
	AmountReceived *float64      `json:"amountReceived"`
	Change         *float64      `json:"change"`
	CreatedAt      time.Time     `json:"createdAt"`
	Items          []ReceiptItem `json:"items"`
}

type ReceiptItem struct {
	ID          int64   `json:"id"`
	ReceiptID   int64   `json:"receiptId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

type StoreSettings struct {
	StoreName        string `json:"storeName"`
	TaxRate          string `json:"taxRate"`
	PriceIncludesTax bool   `json:"priceIncludesTax"`
}

type PurchaseReceipt struct {
	ID                 int64                 `json:"id"`
	ReceiptNumber      string                `json:"receiptNumber"`
	SupplierID         *int64                `json:"supplierId"`
	Status             string                `json:"status"`
	ActualDeliveryDate *time.Time            `json:"actualDeliveryDate"`
	Items              []PurchaseReceiptItem `json:"items"`
}

type PurchaseReceiptItem struct {
	ID                int64   `json:"id"`
	PurchaseReceiptID int64   `json:"purchaseReceiptId"`
	ProductID         *int64  `json:"productId"`
	ProductName       string  `json:"productName"`
	Quantity          int     `json:"quantity"`
	ReceivedQuantity  int     `json:"receivedQuantity"`
	UnitPrice         float64 `json:"unitPrice"`
	Total             float64 `json:"total"`
}
