package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"spalena53-be/internal/address"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memProduct struct {
	name   string
	price  decimal.Decimal
	sale   decimal.NullDecimal
	stock  int
	weight *int
}

type memState struct {
	products  map[uuid.UUID]memProduct
	carts     map[uuid.UUID]map[uuid.UUID]int
	addresses map[uuid.UUID]*address.Address
	orders    map[uuid.UUID]*Order
	items     map[uuid.UUID][]*Item
	seq       int64
}

func newMemState() *memState {
	return &memState{
		products:  map[uuid.UUID]memProduct{},
		carts:     map[uuid.UUID]map[uuid.UUID]int{},
		addresses: map[uuid.UUID]*address.Address{},
		orders:    map[uuid.UUID]*Order{},
		items:     map[uuid.UUID][]*Item{},
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	for k, v := range st.products {
		c.products[k] = v
	}
	for u, lines := range st.carts {
		cp := make(map[uuid.UUID]int, len(lines))
		for p, q := range lines {
			cp[p] = q
		}
		c.carts[u] = cp
	}
	for k, v := range st.addresses {
		c.addresses[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	c.seq = st.seq
	return c
}

// memStore serialises transactions behind one mutex, which gives the same
// outcome as row locks for the scenarios under test.
type memStore struct {
	mu    sync.Mutex
	state *memState

	// conflicts makes the next n InsertOrder calls report a number clash.
	conflicts int
	// block makes WithTx wait for its context to expire.
	block bool
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (m *memStore) addProduct(name string, price int64, sale *int64, stock int, weight *int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	p := memProduct{name: name, price: decimal.NewFromInt(price), stock: stock, weight: weight}
	if sale != nil {
		p.sale = decimal.NewNullDecimal(decimal.NewFromInt(*sale))
	}
	m.state.products[id] = p
	return id
}

func (m *memStore) setPrice(id uuid.UUID, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.state.products[id]
	p.price = decimal.NewFromInt(price)
	p.sale = decimal.NullDecimal{}
	m.state.products[id] = p
}

func (m *memStore) addToCart(userID, productID uuid.UUID, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.carts[userID] == nil {
		m.state.carts[userID] = map[uuid.UUID]int{}
	}
	m.state.carts[userID][productID] += qty
}

func (m *memStore) addAddress(userID uuid.UUID, isDefault bool) *address.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := address.NewAddress(userID, address.Input{
		FirstName:  "Jana",
		LastName:   "Nováková",
		Street:     "Spálená 53",
		City:       "Praha",
		PostalCode: "11000",
		Country:    "CZ",
		Phone:      "+420777123456",
		Email:      "jana@example.com",
	}, isDefault)
	m.state.addresses[a.ID] = a
	return a
}

func (m *memStore) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[id].stock
}

func (m *memStore) cartSize(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.carts[userID])
}

func (m *memStore) counts() (orders, items, addresses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, its := range m.state.items {
		items += len(its)
	}
	return len(m.state.orders), items, len(m.state.addresses)
}

func (m *memStore) storedItems(orderID uuid.UUID) []*Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.items[orderID]
}

func (m *memStore) storedOrder(id uuid.UUID) *Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.orders[id]
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx TxStore) error) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(&memTx{store: m, st: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Order
	for _, o := range m.state.orders {
		if o.UserID == userID {
			res = append(res, o)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].OrderNumber > res[j].OrderNumber })
	return res, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, upd StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	cp := *o
	if upd.Status != nil {
		cp.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		cp.PaymentStatus = *upd.PaymentStatus
	}
	m.state.orders[id] = &cp
	return nil
}

func (m *memStore) UpdateShipment(_ context.Context, id uuid.UUID, tn string, pickup *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok || o.TrackingNumber != nil {
		return false, nil
	}
	cp := *o
	cp.TrackingNumber = &tn
	cp.PickupCode = pickup
	m.state.orders[id] = &cp
	return true, nil
}

func (m *memStore) ListPendingShipment(_ context.Context, before time.Time, limit int) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Order
	for _, o := range m.state.orders {
		if o.TrackingNumber == nil && o.CreatedAt.Before(before) && len(res) < limit {
			res = append(res, o)
		}
	}
	return res, nil
}

type memTx struct {
	store *memStore
	st    *memState
}

func (t *memTx) LockCartLines(_ context.Context, userID uuid.UUID) ([]CartLine, error) {
	var lines []CartLine
	for pid, qty := range t.st.carts[userID] {
		p := t.st.products[pid]
		lines = append(lines, CartLine{
			ProductID:   pid,
			ProductName: p.name,
			Quantity:    qty,
			Stock:       p.stock,
			Price:       p.price,
			SalePrice:   p.sale,
			Weight:      p.weight,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines, nil
}

func (t *memTx) GetAddress(_ context.Context, userID, id uuid.UUID) (*address.Address, error) {
	a, ok := t.st.addresses[id]
	if !ok || a.UserID != userID || !a.IsActive {
		return nil, nil
	}
	return a, nil
}

func (t *memTx) GetDefaultAddress(_ context.Context, userID uuid.UUID) (*address.Address, error) {
	for _, a := range t.st.addresses {
		if a.UserID == userID && a.IsDefault && a.IsActive {
			return a, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateAddress(_ context.Context, a *address.Address) error {
	t.st.addresses[a.ID] = a
	return nil
}

func (t *memTx) NextOrderNumber(_ context.Context, now time.Time) (string, error) {
	t.st.seq++
	return FormatOrderNumber(now, t.st.seq), nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	if t.store.conflicts > 0 {
		t.store.conflicts--
		return fmt.Errorf("%w: %s", ErrOrderNumberConflict, o.OrderNumber)
	}
	for _, existing := range t.st.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("%w: %s", ErrOrderNumberConflict, o.OrderNumber)
		}
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	t.st.orders[o.ID] = &cp
	return nil
}

func (t *memTx) InsertItems(_ context.Context, items []*Item) error {
	for _, it := range items {
		cp := *it
		t.st.items[it.OrderID] = append(t.st.items[it.OrderID], &cp)
	}
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, productID uuid.UUID, qty int) (bool, error) {
	p, ok := t.st.products[productID]
	if !ok || p.stock < qty {
		return false, nil
	}
	p.stock -= qty
	t.st.products[productID] = p
	return true, nil
}

func (t *memTx) ClearCart(_ context.Context, userID uuid.UUID) error {
	delete(t.st.carts, userID)
	return nil
}
