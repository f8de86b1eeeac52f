package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderitemrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/iorderrepo"
	"github.com/redone-net/marketplace/internal/order/dal/interfaces/ioutboxrepo"
	"github.com/redone-net/marketplace/internal/order/dal/postgres"
	orderrepo "github.com/redone-net/marketplace/internal/order/dal/repositories/order/postgres"
	orderitemrepo "github.com/redone-net/marketplace/internal/order/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/redone-net/marketplace/internal/order/dal/repositories/outbox/postgres"
)

// unitOfWork scopes repository access to one transaction so an order, its
// items and its outbox event commit or roll back together.
type unitOfWork struct {
	client        *postgres.Client
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work over the pool. Until Begin is
// called the repositories run outside a transaction.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:        client,
		orderRepo:     orderrepo.NewPostgresOrderRepository(client.Pool()),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(client.Pool()),
		outboxRepo:    outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
