package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"simpleshop/internal/config"
	"simpleshop/internal/handler"
	"simpleshop/internal/model"
	"simpleshop/internal/notify"
	"simpleshop/internal/payment"
	"simpleshop/internal/repository"
	"simpleshop/internal/router"
	"simpleshop/internal/service"
	"simpleshop/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "test-api-key"
	testKeyID     = "rzp_test_key"
	testKeySecret = "rzp_test_secret"
)

// TestEnv is a fully wired API backed by a PostgreSQL container and a fake
// payment gateway.
type TestEnv struct {
	Pool     *pgxpool.Pool
	Server   http.Handler
	Orders   service.OrderService
	Gateway  *FakeGateway
	Mailbox  *Mailbox
	Notifier *notify.Async
}

// FakeGateway answers order creation calls the way the hosted gateway does.
type FakeGateway struct {
	server *httptest.Server
	calls  atomic.Int64
}

func newFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()

	g := &FakeGateway{}
	g.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != testKeyID || pass != testKeySecret {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
			return
		}

		n := g.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":"order_fake%04d","status":"created"}`, n)
	}))
	t.Cleanup(g.server.Close)

	return g
}

// Calls returns how many gateway orders were opened.
func (g *FakeGateway) Calls() int64 {
	return g.calls.Load()
}

// Mailbox records confirmations instead of publishing them.
type Mailbox struct {
	mu   sync.Mutex
	sent map[string][]string
}

// SendOrderConfirmation implements notify.Dispatcher.
func (m *Mailbox) SendOrderConfirmation(_ context.Context, email string, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = make(map[string][]string)
	}
	m.sent[email] = append(m.sent[email], order.ID.String())
	return nil
}

// For returns the order ids confirmed to email.
func (m *Mailbox) For(email string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent[email]...)
}

// SetupTestEnv starts PostgreSQL and assembles every layer the way the API
// binary does.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool, _ := testutil.StartPostgres(t)
	logger := zerolog.Nop()

	gateway := newFakeGateway(t)
	mailbox := &Mailbox{}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	sequencer := repository.NewOrderSequencer(10*time.Second, logger)

	notifier := notify.NewAsync(userRepo, mailbox, 5*time.Second, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = notifier.Close(ctx)
	})

	client := payment.NewRazorpayClient(config.PaymentConfig{
		BaseURL:   gateway.server.URL,
		KeyID:     testKeyID,
		KeySecret: testKeySecret,
		Currency:  "INR",
		Timeout:   5 * time.Second,
	}, logger)

	orderService := service.NewOrderService(orderRepo, sequencer, productRepo, addressRepo, cartRepo, notifier, logger)

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Cart:    handler.NewCartHandler(service.NewCartService(cartRepo, productRepo, logger), logger),
		Payment: handler.NewPaymentHandler(service.NewPaymentService(orderRepo, client, "INR", logger), logger),
		Address: handler.NewAddressHandler(service.NewAddressService(addressRepo, logger), logger),
	}, testAPIKey, logger)

	return &TestEnv{
		Pool:     pool,
		Server:   mux,
		Orders:   orderService,
		Gateway:  gateway,
		Mailbox:  mailbox,
		Notifier: notifier,
	}
}

// Reset empties every table and seeds users alice and bob plus five products.
func (e *TestEnv) Reset(t *testing.T) {
	t.Helper()

	testutil.CleanupDB(t, e.Pool)
	testutil.SeedUsers(t, e.Pool, "alice", "bob")
	testutil.SeedProducts(t, e.Pool,
		model.Product{ID: "P001", Name: "Galaxy S24", Price: decimal.RequireFromString("79999.00"), Category: model.CategorySmartphones, Brand: "Samsung", Stock: 10, Rating: 4.5},
		model.Product{ID: "P002", Name: "WH-1000XM5", Price: decimal.RequireFromString("29990.00"), Category: model.CategoryAudio, Brand: "Sony", Stock: 25, Rating: 4.7},
		model.Product{ID: "P003", Name: "MacBook Air M3", Price: decimal.RequireFromString("114900.00"), Category: model.CategoryLaptops, Brand: "Apple", Stock: 5, Rating: 4.8},
		model.Product{ID: "P004", Name: "Charge 5", Price: decimal.RequireFromString("14999.50"), Category: model.CategoryAudio, Brand: "JBL", Stock: 40, Rating: 4.4},
		model.Product{ID: "P005", Name: "Pixel Watch 2", Price: decimal.RequireFromString("39999.00"), Category: model.CategoryWearables, Brand: "Google", Stock: 8, Rating: 4.1},
	)
}

// Do sends a request through the router. body may be nil, a string of raw
// JSON or a value to encode. userID is omitted when empty.
func (e *TestEnv) Do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()

	e.Server.ServeHTTP(w, req)
	return w
}

// Count returns the number of rows matched by a COUNT query.
func (e *TestEnv) Count(t *testing.T, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, e.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out), w.Body.String())
	return out
}
