package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

// In-memory fakes for the store interfaces. They mirror the guarded-update
// semantics of the SQL layer so the business rules can be exercised without a
// database.

type fakeProducts struct {
	mu         sync.Mutex
	products   map[int64]*models.Product
	referenced map[int64]bool
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[int64]*models.Product), referenced: make(map[int64]bool)}
	for i := range products {
		p := products[i]
		f.products[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) Get(ctx context.Context, id int64) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return *p, nil
}

func (f *fakeProducts) AdjustStock(ctx context.Context, id int64, quantity int, mode string) (store.StockChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !models.KnownStockMode(mode) {
		return store.StockChange{}, store.Invalid("unknown stock mode %q", mode)
	}
	p, ok := f.products[id]
	if !ok {
		return store.StockChange{}, store.ErrNotFound
	}
	if !p.TrackInventory {
		return store.StockChange{Product: *p, Previous: p.Stock}, nil
	}
	previous := p.Stock
	if quantity < 0 {
		if mode == models.StockSet {
			return store.StockChange{}, store.Invalid("stock cannot be set below zero")
		}
		quantity = -quantity
	}
	switch mode {
	case models.StockAdd:
		p.Stock += quantity
	case models.StockSubtract:
		if p.Stock < quantity {
			return store.StockChange{}, &store.InsufficientStockError{
				ProductID: id,
				Product:   p.Name,
				Available: p.Stock,
				Required:  quantity,
			}
		}
		p.Stock -= quantity
	case models.StockSet:
		p.Stock = quantity
	}
	return store.StockChange{Product: *p, Previous: previous, Applied: true}, nil
}

func (f *fakeProducts) UpdatePrices(ctx context.Context, id int64, price, beforeTax, afterTax float64, taxRate string, includesTax bool) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	p.Price = price
	p.BeforeTaxPrice = beforeTax
	p.AfterTaxPrice = afterTax
	p.TaxRate = taxRate
	p.PriceIncludesTax = includesTax
	return *p, nil
}

func (f *fakeProducts) Referenced(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return false, store.ErrNotFound
	}
	return f.referenced[id], nil
}

func (f *fakeProducts) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) Deactivate(ctx context.Context, id int64) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	p.IsActive = false
	return *p, nil
}

// receiveStock mirrors the in-transaction stock increment the purchase store
// runs for a goods delivery.
func (f *fakeProducts) receiveStock(id int64, delta int) (previous int, tracked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || !p.TrackInventory {
		return 0, false
	}
	previous = p.Stock
	p.Stock += delta
	return previous, true
}

func (f *fakeProducts) stockOf(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakeInventory struct {
	mu      sync.Mutex
	entries []models.InventoryTransaction
	err     error
}

func (f *fakeInventory) Append(ctx context.Context, entry models.InventoryTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	entry.ID = int64(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeInventory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[int64]*models.Order
	items     map[int64][]models.OrderItem
	nextOrder int64
	nextItem  int64
	createErr error
	statusErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[int64]*models.Order), items: make(map[int64][]models.OrderItem)}
}

func (f *fakeOrders) Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Order{}, nil, f.createErr
	}
	f.nextOrder++
	order.ID = f.nextOrder
	order.OrderedAt = time.Now()
	f.orders[order.ID] = &order
	created := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		f.nextItem++
		item.ID = f.nextItem
		item.OrderID = order.ID
		created = append(created, item)
	}
	f.items[order.ID] = created
	return order, created, nil
}

func (f *fakeOrders) Get(ctx context.Context, id int64) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return *o, nil
}

func (f *fakeOrders) List(ctx context.Context, status string, tableID *int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if status != "" && o.Status != status {
			continue
		}
		if tableID != nil && (o.TableID == nil || *o.TableID != *tableID) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrders) SetStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return models.Order{}, f.statusErr
	}
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	o.Status = status
	switch status {
	case models.OrderPaid:
		o.PaymentStatus = "paid"
		if o.PaidAt == nil {
			now := time.Now()
			o.PaidAt = &now
		}
	case models.OrderServed:
		if o.ServedAt == nil {
			now := time.Now()
			o.ServedAt = &now
		}
	}
	return *o, nil
}

func (f *fakeOrders) AddItems(ctx context.Context, orderID int64, items []models.OrderItem) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return nil, store.ErrNotFound
	}
	added := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		f.nextItem++
		item.ID = f.nextItem
		item.OrderID = orderID
		added = append(added, item)
	}
	f.items[orderID] = append(f.items[orderID], added...)
	return added, nil
}

func (f *fakeOrders) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for orderID, items := range f.items {
		for i, item := range items {
			if item.ID == itemID {
				f.items[orderID] = append(items[:i:i], items[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeOrders) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrders) ListOrderedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.OrderedAt.Before(start) || !o.OrderedAt.Before(end) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrders) ItemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]models.OrderItem)
	for _, id := range orderIDs {
		out[id] = append([]models.OrderItem(nil), f.items[id]...)
	}
	return out, nil
}

// activeCount mirrors the occupancy query the SQL table store runs.
func (f *fakeOrders) activeCount(tableID, excludeOrderID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.orders {
		if o.ID == excludeOrderID || o.TableID == nil || *o.TableID != tableID {
			continue
		}
		if models.ActiveOrderStatus(o.Status) {
			n++
		}
	}
	return n
}

type fakeTables struct {
	mu       sync.Mutex
	statuses map[int64]string
	orders   *fakeOrders
	err      error
}

func newFakeTables(orders *fakeOrders, ids ...int64) *fakeTables {
	f := &fakeTables{statuses: make(map[int64]string), orders: orders}
	for _, id := range ids {
		f.statuses[id] = models.TableAvailable
	}
	return f
}

func (f *fakeTables) SetStatus(ctx context.Context, id int64, status string) (models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Table{}, f.err
	}
	if _, ok := f.statuses[id]; !ok {
		return models.Table{}, store.ErrNotFound
	}
	f.statuses[id] = status
	return models.Table{ID: id, TableNumber: fmt.Sprintf("T%d", id), Status: status}, nil
}

func (f *fakeTables) ReleaseIfIdle(ctx context.Context, tableID, excludeOrderID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.statuses[tableID]; !ok {
		return false, store.ErrNotFound
	}
	if f.orders.activeCount(tableID, excludeOrderID) > 0 {
		return false, nil
	}
	f.statuses[tableID] = models.TableAvailable
	return true, nil
}

func (f *fakeTables) statusOf(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

type fakeSettings struct {
	settings models.StoreSettings
	err      error
}

func (f *fakeSettings) Get(ctx context.Context) (models.StoreSettings, error) {
	if f.err != nil {
		return models.StoreSettings{}, f.err
	}
	return f.settings, nil
}

type fakeReceipts struct {
	mu       sync.Mutex
	receipts []models.Receipt
	err      error
}

func (f *fakeReceipts) Create(ctx context.Context, receipt models.Receipt, items []models.ReceiptItem) (models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Receipt{}, f.err
	}
	receipt.ID = int64(len(f.receipts) + 1)
	receipt.CreatedAt = time.Now()
	for i := range items {
		items[i].ID = int64(i + 1)
		items[i].ReceiptID = receipt.ID
	}
	receipt.Items = items
	f.receipts = append(f.receipts, receipt)
	return receipt, nil
}

// fakePurchases mirrors the transactional receive reconciliation: received
// counts stored per line, stock moved by the delta with an audit row, status
// recomputed from every line.
type fakePurchases struct {
	mu        sync.Mutex
	receipts  map[int64]*models.PurchaseReceipt
	products  *fakeProducts
	inventory *fakeInventory
	err       error
}

func newFakePurchases(products *fakeProducts, inventory *fakeInventory, receipts ...models.PurchaseReceipt) *fakePurchases {
	f := &fakePurchases{receipts: make(map[int64]*models.PurchaseReceipt), products: products, inventory: inventory}
	for i := range receipts {
		r := receipts[i]
		f.receipts[r.ID] = &r
	}
	return f
}

func (f *fakePurchases) Get(ctx context.Context, id int64) (models.PurchaseReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[id]
	if !ok {
		return models.PurchaseReceipt{}, store.ErrNotFound
	}
	out := *r
	out.Items = append([]models.PurchaseReceiptItem(nil), r.Items...)
	return out, nil
}

func (f *fakePurchases) ReceiveItems(ctx context.Context, purchaseID int64, received []store.ReceivedItem) (store.ReceiveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.ReceiveResult{}, f.err
	}
	r, ok := f.receipts[purchaseID]
	if !ok {
		return store.ReceiveResult{}, store.ErrNotFound
	}

	for _, line := range received {
		idx := -1
		for i := range r.Items {
			if r.Items[i].ID == line.ItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return store.ReceiveResult{}, store.Invalid("purchase order item %d not found", line.ItemID)
		}
		item := &r.Items[idx]
		if line.ReceivedQuantity < 0 {
			return store.ReceiveResult{}, store.Invalid("received quantity cannot be negative for item %d", line.ItemID)
		}
		if line.ReceivedQuantity > item.Quantity {
			return store.ReceiveResult{}, store.Invalid("received quantity (%d) cannot exceed ordered quantity (%d) for item %d", line.ReceivedQuantity, item.Quantity, line.ItemID)
		}

		delta := line.ReceivedQuantity - item.ReceivedQuantity
		item.ReceivedQuantity = line.ReceivedQuantity
		if item.ProductID == nil || delta <= 0 {
			continue
		}
		previous, tracked := f.products.receiveStock(*item.ProductID, delta)
		if !tracked {
			continue
		}
		_ = f.inventory.Append(ctx, models.InventoryTransaction{
			ProductID:     *item.ProductID,
			Type:          models.StockAdd,
			Quantity:      delta,
			PreviousStock: previous,
			NewStock:      previous + delta,
			Notes:         fmt.Sprintf("Received %d units from purchase order %d", delta, purchaseID),
		})
	}

	fully, partially := true, false
	for _, item := range r.Items {
		if item.ReceivedQuantity < item.Quantity {
			fully = false
		}
		if item.ReceivedQuantity > 0 {
			partially = true
		}
	}
	switch {
	case fully:
		r.Status = models.PurchaseReceived
		now := time.Now()
		r.ActualDeliveryDate = &now
	case partially:
		r.Status = models.PurchasePartiallyReceived
		r.ActualDeliveryDate = nil
	default:
		r.Status = models.PurchasePending
		r.ActualDeliveryDate = nil
	}
	return store.ReceiveResult{Status: r.Status}, nil
}

func (f *fakePurchases) statusOf(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[id].Status
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEvents) Publish(ctx context.Context, routingKey string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, routingKey)
}

func (f *fakeEvents) has(routingKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.events {
		if k == routingKey {
			return true
		}
	}
	return false
}
