package repository

import (
	"context"
	"errors"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    status TEXT NOT NULL,
    stock_state TEXT NOT NULL,
    requires_stock_reduction BOOLEAN NOT NULL DEFAULT FALSE,
    execution_started_at TIMESTAMPTZ,
    version BIGINT NOT NULL,
    document JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_orders_stock_saga
    ON orders (status, stock_state, execution_started_at)
    WHERE requires_stock_reduction;
`

const pgUniqueViolation = "23505"

// OrderPostgresRepository stores orders in PostgreSQL through a pgx pool.
type OrderPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ interfaces.IOrderRepository = (*OrderPostgresRepository)(nil)

func NewOrderPostgresRepository(pool *pgxpool.Pool) *OrderPostgresRepository {
	return &OrderPostgresRepository{pool: pool}
}

func (r *OrderPostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

func (r *OrderPostgresRepository) Create(ctx context.Context, o *entities.Order) error {
	s := o.Snapshot()
	doc, err := encodeOrderDocument(s)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, status, stock_state, requires_stock_reduction, execution_started_at, version, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, string(s.Status), string(s.StockState), requiresStockReduction(s), s.ExecutionStartedAt, s.Version, doc,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return interfaces.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *OrderPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	var (
		version int64
		doc     []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT version, document FROM orders WHERE id = $1`, id).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeOrderDocument(doc, version)
}

func (r *OrderPostgresRepository) Update(ctx context.Context, o *entities.Order) (*entities.Order, error) {
	s := o.Snapshot()
	expected := s.Version
	s.Version = expected + 1
	doc, err := encodeOrderDocument(s)
	if err != nil {
		return nil, err
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $3, stock_state = $4, requires_stock_reduction = $5, execution_started_at = $6,
		    version = $7, document = $8, updated_at = now()
		WHERE id = $1 AND version = $2`,
		s.ID, expected,
		string(s.Status), string(s.StockState), requiresStockReduction(s), s.ExecutionStartedAt,
		s.Version, doc,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, interfaces.ErrOrderVersionConflict
	}
	return entities.RestoreOrder(s)
}

func (r *OrderPostgresRepository) ListAwaitingStockWithDeadline(ctx context.Context, cutoff time.Time) ([]*entities.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT version, document FROM orders
		WHERE status = $1
		  AND requires_stock_reduction
		  AND stock_state = $2
		  AND execution_started_at <= $3
		ORDER BY execution_started_at`,
		string(entities.OrderStatusEmExecucao), string(entities.StockInteractionAwaiting), cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entities.Order
	for rows.Next() {
		var (
			version int64
			doc     []byte
		)
		if err := rows.Scan(&version, &doc); err != nil {
			return nil, err
		}
		o, err := decodeOrderDocument(doc, version)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
