package ordersvc

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderitemrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/ioutboxrepo"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/service/models/orderitem"
	"github.com/redone-net/marketplace/internal/order/service/models/outbox"
	"github.com/redone-net/marketplace/internal/order/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	snapshots map[int64]*product.Snapshot
	err       error
	calls     []int64
	auth      string
}

func (f *fakeCatalog) FetchSnapshot(_ context.Context, productID int64, authorization string) (*product.Snapshot, error) {
	f.calls = append(f.calls, productID)
	f.auth = authorization
	if f.err != nil {
		return nil, f.err
	}
	snapshot, ok := f.snapshots[productID]
	if !ok {
		return nil, httperr.New(httperr.KindNotFound, "product not found")
	}

	return snapshot, nil
}

type fakeOrderRepo struct {
	inserted []order.Order
	stored   []order.Order
}

func (f *fakeOrderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	o.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, o)

	return &o, nil
}

func (f *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.stored {
		if len(filter.Ids) > 0 && !containsInt64(filter.Ids, o.ID) {
			continue
		}
		if len(filter.ClientIds) > 0 && !containsString(filter.ClientIds, o.ClientID) {
			continue
		}
		out = append(out, o)
	}

	return out, nil
}

type fakeOrderItemRepo struct {
	inserted []orderitem.OrderItem
	stored   []orderitem.OrderItem
}

func (f *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	for i := range items {
		items[i].ID = int64(len(f.inserted) + i + 1)
	}
	f.inserted = append(f.inserted, items...)

	return items, nil
}

func (f *fakeOrderItemRepo) Query(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	var out []orderitem.OrderItem
	for _, item := range f.stored {
		if containsInt64(filter.OrderIds, item.OrderID) {
			out = append(out, item)
		}
	}

	return out, nil
}

type fakeOutboxRepo struct {
	inserted []outbox.Message
}

func (f *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	f.inserted = append(f.inserted, msg)

	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.Message, error) {
	return f.inserted, nil
}

func (f *fakeOutboxRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

type fakeUOW struct {
	orderRepo     *fakeOrderRepo
	orderItemRepo *fakeOrderItemRepo
	outboxRepo    *fakeOutboxRepo
	begun         bool
	committed     bool
	rolledBack    bool
}

func newFakeUOW() *fakeUOW {
	return &fakeUOW{
		orderRepo:     &fakeOrderRepo{},
		orderItemRepo: &fakeOrderItemRepo{},
		outboxRepo:    &fakeOutboxRepo{},
	}
}

func (f *fakeUOW) Begin(context.Context) error { f.begun = true; return nil }

func (f *fakeUOW) Commit(context.Context) error { f.committed = true; return nil }

func (f *fakeUOW) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true

	return nil
}

func (f *fakeUOW) OrderRepository() iorderrepo.IOrderRepository             { return f.orderRepo }
func (f *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository { return f.orderItemRepo }
func (f *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository          { return f.outboxRepo }

func intPtr(v int) *int { return &v }

func containsInt64(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}

	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}

	return false
}

func newTestService(catalog *fakeCatalog, work *fakeUOW) *OrderService {
	return &OrderService{
		catalog: catalog,
		newUOW:  func() unitOfWork { return work },
		now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestPlaceOrderComputesExactTotals(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		5: {ID: 5, Price: decimal.RequireFromString("49.99"), Quantity: intPtr(10)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	placed, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 2}}, "Bearer tok")
	require.NoError(t, err)

	require.EqualValues(t, 1, placed.ID)
	require.Equal(t, "client-1", placed.ClientID)
	require.Equal(t, order.StatusValidated, placed.Status)
	require.Equal(t, "99.98", placed.TotalAmount.String())
	require.Len(t, placed.Items, 1)
	require.Equal(t, "99.98", placed.Items[0].LineTotal().String())
	require.Equal(t, "49.99", placed.Items[0].Price.String())
	require.Equal(t, "Bearer tok", catalog.auth)
	require.True(t, work.committed)
}

func TestPlaceOrderMultipleItems(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		1: {ID: 1, Price: decimal.RequireFromString("0.10"), Quantity: intPtr(100)},
		2: {ID: 2, Price: decimal.RequireFromString("0.20"), Quantity: intPtr(100)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	placed, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}}, "")
	require.NoError(t, err)

	// 0.10*3 + 0.20 = 0.50 exactly, no float drift
	require.Equal(t, "0.50", placed.TotalAmount.String())
	// snapshots were fetched in request order
	require.Equal(t, []int64{1, 2}, catalog.calls)
	require.Len(t, work.orderItemRepo.inserted, 2)
}

func TestPlaceOrderValidation(t *testing.T) {
	catalog := &fakeCatalog{}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1", nil, "")
	require.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	_, err = svc.PlaceOrder(context.Background(), "", []ItemRequest{{ProductID: 5, Quantity: 1}}, "")
	require.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	// rejected before any catalog call or persistence
	require.Empty(t, catalog.calls)
	require.False(t, work.begun)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		5: {ID: 5, Price: decimal.RequireFromString("49.99"), Quantity: intPtr(1)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 2}}, "")
	require.Error(t, err)
	require.Equal(t, httperr.KindInsufficientStock, httperr.KindOf(err))
	require.Contains(t, err.Error(), "product 5")

	// all-or-nothing: nothing persisted
	require.False(t, work.begun)
	require.Empty(t, work.orderRepo.inserted)
	require.Empty(t, work.orderItemRepo.inserted)
	require.Empty(t, work.outboxRepo.inserted)
}

func TestPlaceOrderAbsentQuantityRejected(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		5: {ID: 5, Price: decimal.RequireFromString("49.99"), Quantity: nil},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 1}}, "")
	require.Equal(t, httperr.KindInsufficientStock, httperr.KindOf(err))
}

func TestPlaceOrderFailsWholeOrderOnSecondItem(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		1: {ID: 1, Price: decimal.RequireFromString("10.00"), Quantity: intPtr(10)},
		2: {ID: 2, Price: decimal.RequireFromString("20.00"), Quantity: intPtr(1)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 5}}, "")
	require.Equal(t, httperr.KindInsufficientStock, httperr.KindOf(err))
	require.Contains(t, err.Error(), "product 2")
	require.False(t, work.begun)
	require.Empty(t, work.orderRepo.inserted)
}

func TestPlaceOrderUpstreamUnavailable(t *testing.T) {
	catalog := &fakeCatalog{err: httperr.New(httperr.KindUpstreamUnavailable, "produit service unavailable")}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 1}}, "")
	require.Equal(t, httperr.KindUpstreamUnavailable, httperr.KindOf(err))
	require.False(t, work.begun)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 99, Quantity: 1}}, "")
	require.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestPlaceOrderEnqueuesOutboxEvent(t *testing.T) {
	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		5: {ID: 5, Price: decimal.RequireFromString("49.99"), Quantity: intPtr(10)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 2}}, "")
	require.NoError(t, err)

	require.Len(t, work.outboxRepo.inserted, 1)
	msg := work.outboxRepo.inserted[0]
	require.Equal(t, "orders", msg.ExchangeName)
	require.Equal(t, "order.validated", msg.RoutingKey)
	require.Contains(t, string(msg.Payload), `"clientId":"client-1"`)
	require.True(t, work.committed, "outbox row must commit with the order")
}

func TestPlaceOrderCommitDoesNotLogRollbackError(t *testing.T) {
	logged := &bytes.Buffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logged, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	catalog := &fakeCatalog{snapshots: map[int64]*product.Snapshot{
		5: {ID: 5, Price: decimal.RequireFromString("49.99"), Quantity: intPtr(10)},
	}}
	work := newFakeUOW()
	svc := newTestService(catalog, work)

	_, err := svc.PlaceOrder(context.Background(), "client-1",
		[]ItemRequest{{ProductID: 5, Quantity: 1}}, "Bearer tok")
	require.NoError(t, err)

	require.True(t, work.committed)
	require.False(t, work.rolledBack)
	require.NotContains(t, logged.String(), "Error rolling back order transaction")
}

func TestGetByID(t *testing.T) {
	work := newFakeUOW()
	work.orderRepo.stored = []order.Order{
		{ID: 7, ClientID: "client-1", Status: order.StatusValidated, TotalAmount: decimal.RequireFromString("99.98")},
	}
	work.orderItemRepo.stored = []orderitem.OrderItem{
		{ID: 1, OrderID: 7, ProductID: 5, Quantity: 2, Price: decimal.RequireFromString("49.99")},
	}
	svc := newTestService(&fakeCatalog{}, work)

	got, err := svc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.EqualValues(t, 5, got.Items[0].ProductID)

	_, err = svc.GetByID(context.Background(), 8)
	require.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestListByClient(t *testing.T) {
	work := newFakeUOW()
	work.orderRepo.stored = []order.Order{
		{ID: 1, ClientID: "client-1"},
		{ID: 2, ClientID: "client-2"},
	}
	svc := newTestService(&fakeCatalog{}, work)

	orders, err := svc.ListByClient(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.EqualValues(t, 1, orders[0].ID)

	orders, err = svc.ListByClient(context.Background(), "client-3")
	require.NoError(t, err)
	require.Empty(t, orders)
}
