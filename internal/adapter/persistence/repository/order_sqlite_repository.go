package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// OrderSQLiteRepository is the single-node order store used for local runs
// and integration tests.
type OrderSQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ interfaces.IOrderRepository = (*OrderSQLiteRepository)(nil)

func NewOrderSQLiteRepository(db *sql.DB) *OrderSQLiteRepository {
	return &OrderSQLiteRepository{db: db, now: time.Now}
}

func (r *OrderSQLiteRepository) Create(ctx context.Context, o *entities.Order) error {
	s := o.Snapshot()
	doc, err := encodeOrderDocument(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO orders (id, status, stock_state, requires_stock_reduction, execution_started_at, version, document, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), string(s.Status), string(s.StockState), requiresStockReduction(s),
		nullableTime(s.ExecutionStartedAt), s.Version, string(doc), formatTime(r.now()),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return interfaces.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *OrderSQLiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	var (
		version int64
		doc     string
	)
	err := r.db.QueryRowContext(ctx, "SELECT version, document FROM orders WHERE id = ?", id.String()).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeOrderDocument([]byte(doc), version)
}

func (r *OrderSQLiteRepository) Update(ctx context.Context, o *entities.Order) (*entities.Order, error) {
	s := o.Snapshot()
	expected := s.Version
	s.Version = expected + 1
	doc, err := encodeOrderDocument(s)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, stock_state = ?, requires_stock_reduction = ?, execution_started_at = ?,
    version = ?, document = ?, updated_at = ?
WHERE id = ? AND version = ?`,
		string(s.Status), string(s.StockState), requiresStockReduction(s), nullableTime(s.ExecutionStartedAt),
		s.Version, string(doc), formatTime(r.now()),
		s.ID.String(), expected,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, interfaces.ErrOrderVersionConflict
	}
	return entities.RestoreOrder(s)
}

func (r *OrderSQLiteRepository) ListAwaitingStockWithDeadline(ctx context.Context, cutoff time.Time) ([]*entities.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT version, document FROM orders
WHERE status = ?
  AND requires_stock_reduction = 1
  AND stock_state = ?
  AND execution_started_at <= ?
ORDER BY execution_started_at`,
		string(entities.OrderStatusEmExecucao), string(entities.StockInteractionAwaiting), formatTime(cutoff),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entities.Order
	for rows.Next() {
		var (
			version int64
			doc     string
		)
		if err := rows.Scan(&version, &doc); err != nil {
			return nil, err
		}
		o, err := decodeOrderDocument([]byte(doc), version)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func isSQLiteConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
