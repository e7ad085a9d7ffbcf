package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"github.com/shopspring/decimal"
)

// memStore backs the cart, checkout and order tests. WithinTx snapshots the
// maps and restores them when fn fails, so rollbacks are observable.
type memStore struct {
	mu         sync.Mutex
	products   map[string]model.Product
	carts      map[string]model.Cart // keyed by user id
	items      []model.CartItem
	orders     map[string]model.Order
	orderItems map[string][]model.OrderItem
	audits     []model.AuditLog
	// not covered by snapshots; only successful paths assert on it
	adjustments []model.InventoryAdjustment
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[string]model.Product{},
		carts:      map[string]model.Cart{},
		orders:     map[string]model.Order{},
		orderItems: map[string][]model.OrderItem{},
	}
}

func (s *memStore) addProduct(id, name string, price int64, stock int64) {
	s.products[id] = model.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func (s *memStore) addOrder(o model.Order, items ...model.OrderItem) {
	s.orders[o.ID] = o
	s.orderItems[o.ID] = items
}

func (s *memStore) status(orderID string) model.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID].Status
}

func (s *memStore) stock(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) lines() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartItem(nil), s.items...)
}

type memSnapshot struct {
	products   map[string]model.Product
	carts      map[string]model.Cart
	items      []model.CartItem
	orders     map[string]model.Order
	orderItems map[string][]model.OrderItem
	audits     []model.AuditLog
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		products:   map[string]model.Product{},
		carts:      map[string]model.Cart{},
		items:      append([]model.CartItem(nil), s.items...),
		orders:     map[string]model.Order{},
		orderItems: map[string][]model.OrderItem{},
		audits:     append([]model.AuditLog(nil), s.audits...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.orderItems {
		snap.orderItems[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.carts = snap.carts
	s.items = snap.items
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.audits = snap.audits
}

// ---- transaction ----

type memTx struct {
	store *memStore
	calls int
}

func (m *memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	snap := m.store.snapshot()
	if err := fn(memRepos{s: m.store, conn: &connGuard{}}); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type memRepos struct {
	s    *memStore
	conn *connGuard
}

func (r memRepos) Orders() repo.OrderRepository         { return memOrders{r.s} }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.s} }
func (r memRepos) Carts() repo.CartRepository           { return memCarts{r.s} }
func (r memRepos) CartItems() repo.CartItemRepository   { return memCarts{r.s} }
func (r memRepos) Inventory() repo.InventoryRepository  { return memInventory{r.s} }
func (r memRepos) Categories() repo.CategoryRepository  { return nil }
func (r memRepos) AuditLogs() repo.AuditLogRepository   { return memAudit{r.s} }
func (r memRepos) Users() repo.UserRepository           { return nil }
func (r memRepos) Sessions() repo.SessionRepository     { return nil }

func (r memRepos) Products() repo.ProductRepository {
	if r.conn != nil {
		return txProducts{memProducts: memProducts{r.s}, conn: r.conn}
	}
	return memProducts{r.s}
}

// connGuard behaves like the single connection behind a transaction: a query
// that starts while another is still running fails.
type connGuard struct{ busy int32 }

var errConnBusy = errors.New("conn busy")

type txProducts struct {
	memProducts
	conn *connGuard
}

func (p txProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	if !atomic.CompareAndSwapInt32(&p.conn.busy, 0, 1) {
		return model.Product{}, errConnBusy
	}
	defer atomic.StoreInt32(&p.conn.busy, 0)
	time.Sleep(5 * time.Millisecond)
	return p.memProducts.FindByID(ctx, id)
}

// ---- products ----

type memProducts struct{ s *memStore }

func (m memProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in memStore tests")
}
func (m memProducts) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	panic("not used in memStore tests")
}
func (m memProducts) Newest(ctx context.Context, limit int) ([]model.Product, error) {
	panic("not used in memStore tests")
}
func (m memProducts) Related(ctx context.Context, product model.Product, limit int) ([]model.Product, error) {
	panic("not used in memStore tests")
}
func (m memProducts) LowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	panic("not used in memStore tests")
}
func (m memProducts) Count(ctx context.Context) (int64, error) {
	panic("not used in memStore tests")
}
func (m memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.products[p.ID] = p
	return p, nil
}
func (m memProducts) Update(ctx context.Context, p model.Product) error {
	panic("not used in memStore tests")
}
func (m memProducts) SoftDelete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.IsActive = false
	m.s.products[id] = p
	return nil
}

// ---- carts and cart lines ----

type memCarts struct{ s *memStore }

func (m memCarts) GetOrCreateByUserID(ctx context.Context, userID string, newID string) (model.Cart, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.carts[userID]; ok {
		return c, nil
	}
	c := model.Cart{ID: newID, UserID: userID}
	m.s.carts[userID] = c
	return c, nil
}

func (m memCarts) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.carts[userID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (m memCarts) Clear(ctx context.Context, cartID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	kept := m.s.items[:0:0]
	for _, it := range m.s.items {
		if it.CartID != cartID {
			kept = append(kept, it)
		}
	}
	m.s.items = kept
	return nil
}

func (m memCarts) ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range m.s.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m memCarts) UpsertByCartAndProduct(ctx context.Context, cartID, productID string, addQty int64, newID string) (model.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, it := range m.s.items {
		if it.CartID == cartID && it.ProductID == productID {
			m.s.items[i].Quantity += addQty
			return m.s.items[i], nil
		}
	}
	it := model.CartItem{ID: newID, CartID: cartID, ProductID: productID, Quantity: addQty}
	m.s.items = append(m.s.items, it)
	return it, nil
}

func (m memCarts) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, it := range m.s.items {
		if it.ID == cartItemID {
			m.s.items[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m memCarts) DeleteByID(ctx context.Context, cartItemID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, it := range m.s.items {
		if it.ID == cartItemID {
			m.s.items = append(m.s.items[:i], m.s.items[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m memCarts) FindByID(ctx context.Context, cartItemID string) (model.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, it := range m.s.items {
		if it.ID == cartItemID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (m memCarts) IsOwnedByUser(ctx context.Context, cartItemID, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.carts[userID]
	if !ok {
		return false, nil
	}
	for _, it := range m.s.items {
		if it.ID == cartItemID {
			return it.CartID == c.ID, nil
		}
	}
	return false, nil
}

func (m memCarts) SumQuantity(ctx context.Context, cartID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, it := range m.s.items {
		if it.CartID == cartID {
			n += it.Quantity
		}
	}
	return n, nil
}

// ---- inventory ----

type memInventory struct{ s *memStore }

func (m memInventory) SetStock(ctx context.Context, productID string, newStock int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.StockQuantity = newStock
	m.s.products[productID] = p
	return nil
}

func (m memInventory) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	m.s.products[productID] = p
	return true, nil
}

func (m memInventory) IncreaseStock(ctx context.Context, productID string, qty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.StockQuantity += qty
	m.s.products[productID] = p
	return nil
}

func (m memInventory) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.adjustments = append(m.s.adjustments, adjustment)
	return nil
}

// ---- orders ----

type memOrders struct{ s *memStore }

func (m memOrders) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m memOrders) ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var mine []model.Order
	for _, o := range m.s.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	start := (page - 1) * limit
	if start >= len(mine) {
		return []model.Order{}, total, nil
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (m memOrders) Create(ctx context.Context, order model.Order) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if order.IdempotencyKey != nil {
		for _, o := range m.s.orders {
			if o.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
				return "", repo.ErrConflict
			}
		}
	}
	m.s.orders[order.ID] = order
	return order.ID, nil
}

func (m memOrders) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	m.s.orders[orderID] = o
	return nil
}

func (m memOrders) FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, o := range m.s.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (m memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in memStore tests")
}
func (m memOrders) Count(ctx context.Context) (int64, error) {
	panic("not used in memStore tests")
}
func (m memOrders) Revenue(ctx context.Context) (decimal.Decimal, error) {
	panic("not used in memStore tests")
}

type memOrderItems struct{ s *memStore }

func (m memOrderItems) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.orderItems[orderID] = append([]model.OrderItem(nil), items...)
	return nil
}

func (m memOrderItems) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]model.OrderItem{}, m.s.orderItems[orderID]...), nil
}

type memAudit struct{ s *memStore }

func (m memAudit) Create(ctx context.Context, log model.AuditLog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.audits = append(m.s.audits, log)
	return nil
}

func (m memAudit) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in memStore tests")
}

// ---- ids and time ----

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%04d", prefix, g.n)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
