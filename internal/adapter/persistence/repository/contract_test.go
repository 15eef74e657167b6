package repository

import (
	"context"
	"testing"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureNow = time.Date(2025, 3, 10, 9, 0, 0, 123456000, time.UTC)

func fixturePart(qty int) entities.PartItem {
	return entities.PartItem{
		StockItemID: uuid.New(),
		Name:        "Pastilha de freio",
		UnitPrice:   decimal.RequireFromString("129.90"),
		Quantity:    qty,
		Type:        entities.PartTypePeca,
	}
}

func fixtureService() entities.ServiceItem {
	return entities.ServiceItem{ServiceID: uuid.New(), Name: "Alinhamento", Price: decimal.RequireFromString("90.00")}
}

// fixtureOrder builds an order in EmExecucao that started at startedAt.
func fixtureOrder(t *testing.T, startedAt time.Time, withParts bool) *entities.Order {
	t.Helper()
	o, err := entities.NewOrder(uuid.New(), fixtureNow.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, o.StartDiagnosis())
	if withParts {
		require.NoError(t, o.AddPart(fixturePart(2)))
	}
	require.NoError(t, o.AddService(fixtureService()))
	require.NoError(t, o.GenerateQuote(fixtureNow.Add(-23*time.Hour)))
	require.NoError(t, o.ApproveQuote(startedAt, "corr-"+o.ID().String()[:8]))
	return o
}

func ids(orders []*entities.Order) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID())
	}
	return out
}

// runOrderRepositoryContract exercises any IOrderRepository implementation.
func runOrderRepositoryContract(t *testing.T, newRepo func(t *testing.T) interfaces.IOrderRepository) {
	ctx := context.Background()

	t.Run("create and load round trip", func(t *testing.T) {
		repo := newRepo(t)
		o := fixtureOrder(t, fixtureNow.Add(-time.Minute), true)
		require.NoError(t, repo.Create(ctx, o))

		got, err := repo.GetByID(ctx, o.ID())
		require.NoError(t, err)
		require.NotNil(t, got)
		want := o.Snapshot()
		have := got.Snapshot()
		assert.Equal(t, want.Code, have.Code)
		assert.Equal(t, want.VehicleID, have.VehicleID)
		assert.Equal(t, want.Status, have.Status)
		assert.Equal(t, want.StockState, have.StockState)
		assert.Equal(t, want.StockCorrelationID, have.StockCorrelationID)
		assert.True(t, want.CreatedAt.Equal(have.CreatedAt))
		require.NotNil(t, have.ExecutionStartedAt)
		assert.True(t, want.ExecutionStartedAt.Equal(*have.ExecutionStartedAt))
		require.Len(t, have.Parts, 1)
		assert.True(t, want.Parts[0].UnitPrice.Equal(have.Parts[0].UnitPrice))
		assert.Equal(t, want.Parts[0].StockItemID, have.Parts[0].StockItemID)
		require.Len(t, have.Services, 1)
		require.NotNil(t, have.Quote)
		assert.True(t, want.Quote.Total.Equal(have.Quote.Total))
		assert.Equal(t, int64(0), have.Version)
	})

	t.Run("create twice conflicts", func(t *testing.T) {
		repo := newRepo(t)
		o := fixtureOrder(t, fixtureNow, false)
		require.NoError(t, repo.Create(ctx, o))
		require.ErrorIs(t, repo.Create(ctx, o), interfaces.ErrOrderAlreadyExists)
	})

	t.Run("missing order is nil without error", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update bumps version and rejects stale writers", func(t *testing.T) {
		repo := newRepo(t)
		o := fixtureOrder(t, fixtureNow.Add(-time.Minute), true)
		require.NoError(t, repo.Create(ctx, o))

		first, err := repo.GetByID(ctx, o.ID())
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, o.ID())
		require.NoError(t, err)

		require.NoError(t, first.ConfirmStockReduction())
		updated, err := repo.Update(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Version())

		require.NoError(t, second.RegisterStockReductionFailure(entities.StockFailureTimeout))
		_, err = repo.Update(ctx, second)
		require.ErrorIs(t, err, interfaces.ErrOrderVersionConflict)

		stored, err := repo.GetByID(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, entities.StockInteractionConfirmed, stored.StockInteraction().State())
		assert.Equal(t, entities.OrderStatusEmExecucao, stored.Status())
		assert.Equal(t, int64(1), stored.Version())
	})

	t.Run("update of unknown order conflicts", func(t *testing.T) {
		repo := newRepo(t)
		o := fixtureOrder(t, fixtureNow, false)
		_, err := repo.Update(ctx, o)
		require.ErrorIs(t, err, interfaces.ErrOrderVersionConflict)
	})

	t.Run("awaiting stock query applies all four conditions", func(t *testing.T) {
		repo := newRepo(t)
		cutoff := fixtureNow.Add(-90 * time.Second)

		expired := fixtureOrder(t, fixtureNow.Add(-5*time.Minute), true)
		atCutoff := fixtureOrder(t, cutoff, true)
		fresh := fixtureOrder(t, fixtureNow.Add(-10*time.Second), true)
		confirmed := fixtureOrder(t, fixtureNow.Add(-5*time.Minute), true)
		require.NoError(t, confirmed.ConfirmStockReduction())
		noParts := fixtureOrder(t, fixtureNow.Add(-5*time.Minute), false)
		cancelled := fixtureOrder(t, fixtureNow.Add(-5*time.Minute), true)
		require.NoError(t, cancelled.Cancel())
		compensated := fixtureOrder(t, fixtureNow.Add(-5*time.Minute), true)
		require.NoError(t, compensated.RegisterStockReductionFailure(entities.StockFailureInternalError))

		for _, o := range []*entities.Order{expired, atCutoff, fresh, confirmed, noParts, cancelled, compensated} {
			require.NoError(t, repo.Create(ctx, o))
		}

		got, err := repo.ListAwaitingStockWithDeadline(ctx, cutoff)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{expired.ID(), atCutoff.ID()}, ids(got))
	})
}
