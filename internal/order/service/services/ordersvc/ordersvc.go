package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderitemrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/ioutboxrepo"
	"github.com/redone-net/marketplace/internal/order/dal/postgres"
	"github.com/redone-net/marketplace/internal/order/dal/uow"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/service/models/orderitem"
	"github.com/redone-net/marketplace/internal/order/service/models/outbox"
	"github.com/redone-net/marketplace/internal/order/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
	"github.com/shopspring/decimal"
)

const (
	orderExchange     = "orders"
	orderValidatedKey = "order.validated"
	outboxMaxRetries  = 10
	outboxContentType = "application/json"
)

// ItemRequest is one requested order line.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// catalogClient fetches product snapshots from the catalog service.
type catalogClient interface {
	FetchSnapshot(ctx context.Context, productID int64, authorization string) (*product.Snapshot, error)
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// OrderService owns the order placement workflow and order reads.
type OrderService struct {
	pgClient *postgres.Client
	catalog  catalogClient
	newUOW   func() unitOfWork
	now      func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithCatalogClient sets the catalog client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogClient(client catalogClient) option {
	return func(s *OrderService) {
		s.catalog = client
	}
}

// PlaceOrder validates the request, snapshots every line item from the
// catalog, checks requested quantity against the snapshot and persists the
// order with its items as one transaction. The caller's credential is
// forwarded to the catalog unchanged.
//
// The stock check is a plain read against the catalog: nothing is
// reserved or decremented, so two concurrent orders can both pass the
// check against the same availability value.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	clientID string,
	items []ItemRequest,
	authorization string,
) (*order.Order, error) {
	if len(items) == 0 {
		return nil, httperr.New(httperr.KindValidation, "order must contain items")
	}
	if clientID == "" {
		return nil, httperr.New(httperr.KindValidation, "client id is required")
	}

	orderItems := make([]orderitem.OrderItem, 0, len(items))
	totalAmount := decimal.Zero

	for _, item := range items {
		snapshot, err := s.catalog.FetchSnapshot(ctx, item.ProductID, authorization)
		if err != nil {
			return nil, err
		}
		if snapshot.Quantity == nil || *snapshot.Quantity < item.Quantity {
			return nil, httperr.New(httperr.KindInsufficientStock, "insufficient stock for product %d", snapshot.ID)
		}

		orderItems = append(orderItems, orderitem.OrderItem{
			ProductID: snapshot.ID,
			Quantity:  item.Quantity,
			Price:     snapshot.Price,
		})
		totalAmount = totalAmount.Add(snapshot.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	placed := order.Order{
		ClientID:    clientID,
		OrderDate:   s.now(),
		Status:      order.StatusValidated,
		TotalAmount: totalAmount,
		Items:       orderItems,
	}

	return s.persist(ctx, placed)
}

// persist writes the order, its items and its outbox event in one
// transaction.
func (s *OrderService) persist(ctx context.Context, o order.Order) (*order.Order, error) {
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("Error rolling back order transaction", "error", err)
		}
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	for i := range o.Items {
		o.Items[i].OrderID = inserted.ID
	}
	items, err := work.OrderItemRepository().BulkInsert(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	inserted.Items = items

	if err := s.enqueueOrderEvent(ctx, work, inserted); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	return inserted, nil
}

func (s *OrderService) enqueueOrderEvent(ctx context.Context, work unitOfWork, o *order.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}

	now := s.now()

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		ExchangeName: orderExchange,
		RoutingKey:   orderValidatedKey,
		Payload:      payload,
		ContentType:  outboxContentType,
		MaxRetries:   outboxMaxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}

// ListOrders retrieves orders with their items based on filter.
func (s *OrderService) ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemFilter := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemFilter.OrderIds = append(itemFilter.OrderIds, o.ID)
	}
	items, err := work.OrderItemRepository().Query(ctx, itemFilter)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].Items = append(orders[i].Items, item)
			}
		}
	}

	return orders, nil
}

// ListByClient retrieves one client's orders with their items.
func (s *OrderService) ListByClient(ctx context.Context, clientID string) ([]order.Order, error) {
	return s.ListOrders(ctx, order.QueryOrdersModel{ClientIds: []string{clientID}})
}

// GetByID retrieves a single order with its items.
func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	orders, err := s.ListOrders(ctx, order.QueryOrdersModel{Ids: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, httperr.New(httperr.KindNotFound, "order not found")
	}

	return &orders[0], nil
}
