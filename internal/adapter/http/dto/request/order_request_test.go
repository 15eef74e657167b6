package request

import (
	"errors"
	"os_service_api/internal/domain/entities"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAddPartRequest_ToPartItem(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := AddPartRequest{
			StockItemID: " 0e1d6a34-6d6e-4c2b-a9e9-1c6f0b8c0001 ",
			Name:        " Filtro de oleo ",
			UnitPrice:   decimal.RequireFromString("45.90"),
			Quantity:    2,
			Type:        "peca",
		}

		p, err := r.ToPartItem()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.StockItemID != uuid.MustParse("0e1d6a34-6d6e-4c2b-a9e9-1c6f0b8c0001") {
			t.Fatalf("unexpected stock item id: %s", p.StockItemID)
		}
		if p.Name != "Filtro de oleo" || p.Quantity != 2 || p.Type != entities.PartTypePeca {
			t.Fatalf("unexpected part: %+v", p)
		}
		if !p.UnitPrice.Equal(decimal.RequireFromString("45.9")) {
			t.Fatalf("unexpected price: %s", p.UnitPrice)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"", "abc", uuid.Nil.String()} {
			_, err := AddPartRequest{StockItemID: id}.ToPartItem()
			if !errors.Is(err, ErrInvalidItemID) {
				t.Fatalf("id %q: expected ErrInvalidItemID, got %v", id, err)
			}
		}
	})
}

func TestAddServiceRequest_ToServiceItem(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := AddServiceRequest{
			ServiceID: "9a7c1f3e-2b4d-4e5f-8a6b-7c8d9e0f1a2b",
			Name:      "Troca de oleo",
			Price:     decimal.NewFromInt(80),
		}.ToServiceItem()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Name != "Troca de oleo" || !s.Price.Equal(decimal.NewFromInt(80)) {
			t.Fatalf("unexpected service: %+v", s)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		if _, err := (AddServiceRequest{ServiceID: "x"}).ToServiceItem(); !errors.Is(err, ErrInvalidItemID) {
			t.Fatalf("expected ErrInvalidItemID, got %v", err)
		}
	})
}
