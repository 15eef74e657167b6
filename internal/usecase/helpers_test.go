package usecase

import (
	"context"
	"testing"
	"time"

	"os_service_api/internal/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func testPart() entities.PartItem {
	return entities.PartItem{
		StockItemID: uuid.New(),
		Name:        "Filtro de oleo",
		UnitPrice:   decimal.RequireFromString("45.90"),
		Quantity:    2,
		Type:        entities.PartTypePeca,
	}
}

func testService() entities.ServiceItem {
	return entities.ServiceItem{
		ServiceID: uuid.New(),
		Name:      "Troca de oleo",
		Price:     decimal.NewFromInt(80),
	}
}

func receivedOrder(t *testing.T) *entities.Order {
	t.Helper()
	o, err := entities.NewOrder(uuid.New(), testNow.Add(-time.Hour))
	must(t, err)
	return o
}

func orderAwaitingApproval(t *testing.T, withParts bool) *entities.Order {
	t.Helper()
	o := receivedOrder(t)
	must(t, o.StartDiagnosis())
	if withParts {
		must(t, o.AddPart(testPart()))
	}
	must(t, o.AddService(testService()))
	must(t, o.GenerateQuote(testNow.Add(-50*time.Minute)))
	return o
}

func orderAwaitingStock(t *testing.T, startedAt time.Time) *entities.Order {
	t.Helper()
	o := orderAwaitingApproval(t, true)
	must(t, o.ApproveQuote(startedAt, "corr-saga"))
	return o
}

// clone returns an independent copy, the way a store hands out fresh loads.
func clone(t *testing.T, o *entities.Order) *entities.Order {
	t.Helper()
	c, err := entities.RestoreOrder(o.Snapshot())
	must(t, err)
	return c
}

func returnUpdated(_ context.Context, o *entities.Order) (*entities.Order, error) {
	return o, nil
}
