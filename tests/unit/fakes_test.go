package unit

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
)

// =====================
// インメモリのfake repository群。
// 状態を持たせて「最終状態」を検証できるようにする（webhook再送テスト用）。
// =====================

type fakeTxManager struct {
	repos *fakeTxRepos
	calls int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	return fn(m.repos)
}

type fakeTxRepos struct {
	orders     *fakeOrderRepo
	orderItems *fakeOrderItemRepo
	products   *fakeProductRepo
	inventory  *fakeInventoryRepo
	auditLogs  *fakeAuditLogRepo
}

func (r *fakeTxRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *fakeTxRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *fakeTxRepos) Products() repo.ProductRepository     { return r.products }
func (r *fakeTxRepos) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *fakeTxRepos) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// ---- products / variants ----

type fakeProductRepo struct {
	products map[int64]model.Product
	variants map[int64]*model.Variant
}

func (f *fakeProductRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	out := []model.Product{}
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) FindActiveByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := f.products[id]
	if !ok || !p.IsActive {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) FindVariant(ctx context.Context, productID int64, size string, design string) (model.Variant, error) {
	for _, v := range f.variants {
		if v.ProductID == productID && v.Size == size && v.Design == design {
			return *v, nil
		}
	}
	return model.Variant{}, repo.ErrNotFound
}

// ---- inventory ----

type fakeInventoryRepo struct {
	products    *fakeProductRepo
	adjustments []model.InventoryAdjustment
	decrements  int
	increments  int
}

func (f *fakeInventoryRepo) DecrementStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	v, ok := f.products.variants[variantID]
	if !ok {
		return false, nil
	}
	if v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	f.decrements++
	return true, nil
}

func (f *fakeInventoryRepo) IncreaseStock(ctx context.Context, variantID int64, qty int64) error {
	v, ok := f.products.variants[variantID]
	if !ok {
		return repo.ErrNotFound
	}
	v.Stock += qty
	f.increments++
	return nil
}

func (f *fakeInventoryRepo) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	f.adjustments = append(f.adjustments, adj)
	return nil
}

func (f *fakeInventoryRepo) ListAdjustmentsByOrderID(ctx context.Context, orderID int64) ([]model.InventoryAdjustment, error) {
	out := []model.InventoryAdjustment{}
	for _, a := range f.adjustments {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---- orders ----

type fakeOrderRepo struct {
	orders  map[int64]*model.Order
	history []model.OrderStatusHistory
	nextID  int64
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return *o, nil
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	out := []model.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	f.nextID++
	order.ID = f.nextID
	f.orders[order.ID] = &order
	return order.ID, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) SetTrackingNumber(ctx context.Context, orderID int64, tracking string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.TrackingNumber = tracking
	return nil
}

func (f *fakeOrderRepo) SetSessionID(ctx context.Context, orderID int64, sessionID string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Payment.SessionID = sessionID
	return nil
}

func (f *fakeOrderRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (model.Order, error) {
	for _, o := range f.orders {
		if o.Payment.IntentID == intentID {
			return *o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (f *fakeOrderRepo) UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, intentID string, paidAt *time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Payment.Status = status
	if intentID != "" {
		o.Payment.IntentID = intentID
	}
	if paidAt != nil {
		o.Payment.PaidAt = paidAt
	}
	return nil
}

func (f *fakeOrderRepo) MarkStockCommitted(ctx context.Context, orderID int64) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	if o.StockCommitted {
		return false, nil
	}
	o.StockCommitted = true
	return true, nil
}

func (f *fakeOrderRepo) ClearStockCommitted(ctx context.Context, orderID int64) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	if !o.StockCommitted {
		return false, nil
	}
	o.StockCommitted = false
	return true, nil
}

func (f *fakeOrderRepo) SetOversold(ctx context.Context, orderID int64) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Oversold = true
	return nil
}

func (f *fakeOrderRepo) AppendHistory(ctx context.Context, h model.OrderStatusHistory) error {
	f.history = append(f.history, h)
	return nil
}

func (f *fakeOrderRepo) ListHistoryByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	out := []model.OrderStatusHistory{}
	for _, h := range f.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAdmin(ctx context.Context, q repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	out := []model.Order{}
	for _, o := range f.orders {
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if q.UserID != nil && o.UserID != *q.UserID {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

// ---- order items ----

type fakeOrderItemRepo struct {
	items map[int64][]model.OrderItem
}

func (f *fakeOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
	}
	f.items[orderID] = append(f.items[orderID], items...)
	return nil
}

func (f *fakeOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

// ---- audit logs ----

type fakeAuditLogRepo struct {
	logs []model.AuditLog
}

func (f *fakeAuditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAuditLogRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	for _, l := range f.logs {
		if filter.ActorUserID != nil && l.ActorUserID != *filter.ActorUserID {
			continue
		}
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.ResourceType != nil && l.ResourceType != *filter.ResourceType {
			continue
		}
		if filter.ResourceID != nil && l.ResourceID != *filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ---- 決済プロバイダのfake ----

type fakeProcessor struct {
	session payment.Session
	err     error
	calls   []payment.CheckoutSessionParams
}

func (f *fakeProcessor) CreateCheckoutSession(ctx context.Context, p payment.CheckoutSessionParams) (payment.Session, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return payment.Session{}, f.err
	}
	return f.session, nil
}

// =====================
// world: テストごとの組み立て
// =====================

type world struct {
	tx        *fakeTxManager
	orders    *fakeOrderRepo
	items     *fakeOrderItemRepo
	products  *fakeProductRepo
	inventory *fakeInventoryRepo
	audits    *fakeAuditLogRepo
}

func newWorld() *world {
	products := &fakeProductRepo{
		products: map[int64]model.Product{},
		variants: map[int64]*model.Variant{},
	}
	orders := &fakeOrderRepo{orders: map[int64]*model.Order{}}
	items := &fakeOrderItemRepo{items: map[int64][]model.OrderItem{}}
	inventory := &fakeInventoryRepo{products: products}
	audits := &fakeAuditLogRepo{}

	return &world{
		tx: &fakeTxManager{repos: &fakeTxRepos{
			orders:     orders,
			orderItems: items,
			products:   products,
			inventory:  inventory,
			auditLogs:  audits,
		}},
		orders:    orders,
		items:     items,
		products:  products,
		inventory: inventory,
		audits:    audits,
	}
}

func (w *world) addProduct(p model.Product, variants ...model.Variant) {
	w.products.products[p.ID] = p
	for i := range variants {
		v := variants[i]
		v.ProductID = p.ID
		w.products.variants[v.ID] = &v
	}
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
