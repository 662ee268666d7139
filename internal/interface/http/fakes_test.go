package http

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domorder "example.com/pos-scanner/internal/domain/order"
	domproduct "example.com/pos-scanner/internal/domain/product"
	domscan "example.com/pos-scanner/internal/domain/scan"
	"example.com/pos-scanner/internal/infra/persistence/memory"
	cartuc "example.com/pos-scanner/internal/usecase/cart"
	checkoutuc "example.com/pos-scanner/internal/usecase/checkout"
	orderuc "example.com/pos-scanner/internal/usecase/order"
	productuc "example.com/pos-scanner/internal/usecase/product"
	scanuc "example.com/pos-scanner/internal/usecase/scan"
)

type mockProductRepository struct {
	products map[int64]*domproduct.Product
	nextID   int64
	listErr  error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domproduct.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	p.ID = m.nextID
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) GetByBarcode(ctx context.Context, barcode string) (*domproduct.Product, error) {
	for _, p := range m.products {
		if p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domproduct.Product
	for _, p := range m.products {
		if filter.Search != "" && !strings.Contains(p.Name, filter.Search) && !strings.Contains(p.Barcode, filter.Search) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type mockOrderRepository struct {
	orders    map[int64]*domorder.Order
	nextID    int64
	createErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[int64]*domorder.Order),
		nextID: 1,
	}
}

func (m *mockOrderRepository) CreateFromCart(ctx context.Context, snapshot domcart.Snapshot) (*domorder.Order, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	o := &domorder.Order{ID: m.nextID, TotalAmount: snapshot.Total(), CreatedAt: time.Now()}
	m.nextID++
	for _, item := range snapshot.Items() {
		o.Items = append(o.Items, domorder.OrderItem{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Barcode:   item.Barcode,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
			Total:     item.LineTotal(),
		})
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	var result []*domorder.Order
	for _, o := range m.orders {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockOrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domorder.Order, error) {
	all, _ := m.List(ctx)
	var result []*domorder.Order
	for _, o := range all {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return o, nil
}

type fakeScanner struct {
	mu           sync.Mutex
	running      bool
	mode         domscan.Mode
	startErr     error
	stopCalls    int
	frames       [][]byte
	streamErr    error
	once         domscan.RegistrationResult
	onceErr      error
	onceMode     domscan.Mode
	onceTimeout  time.Duration
	registration *domscan.RegistrationResult
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{mode: domscan.ModeAddToCart}
}

func (f *fakeScanner) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeScanner) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.stopCalls++
}

func (f *fakeScanner) Status() scanuc.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := scanuc.Status{Running: f.running, Mode: f.mode}
	if f.running {
		st.SessionID = "session-1"
	}
	return st
}

func (f *fakeScanner) SetMode(mode domscan.Mode) error {
	if !mode.IsValid() {
		return domscan.ErrInvalidMode
	}
	f.mu.Lock()
	f.mode = mode
	f.mu.Unlock()
	return nil
}

func (f *fakeScanner) ScanOnce(ctx context.Context, mode domscan.Mode, timeout time.Duration) (domscan.RegistrationResult, error) {
	f.onceMode = mode
	f.onceTimeout = timeout
	return f.once, f.onceErr
}

func (f *fakeScanner) TakeRegistration() (domscan.RegistrationResult, bool) {
	if f.registration == nil {
		return domscan.RegistrationResult{}, false
	}
	r := *f.registration
	f.registration = nil
	return r, true
}

func (f *fakeScanner) Stream(ctx context.Context, emit func(jpeg []byte) error) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	for _, frame := range f.frames {
		if err := emit(frame); err != nil {
			return err
		}
	}
	return f.streamErr
}

type testEnv struct {
	api      *API
	products *mockProductRepository
	orders   *mockOrderRepository
	cart     *memory.CartStore
	scanner  *fakeScanner
}

func newTestEnv() *testEnv {
	env := &testEnv{
		products: newMockProductRepository(),
		orders:   newMockOrderRepository(),
		cart:     memory.NewCartStore(),
		scanner:  newFakeScanner(),
	}
	env.api = NewAPI(Dependencies{
		ProductService:  productuc.NewService(env.products),
		CartService:     cartuc.NewService(env.cart),
		CheckoutService: checkoutuc.NewService(env.cart, env.orders, nil),
		OrderService:    orderuc.NewService(env.orders),
		Scanner:         env.scanner,
		ScanTimeouts:    ScanTimeouts{Default: 10 * time.Second, Max: 30 * time.Second},
	})
	return env
}
