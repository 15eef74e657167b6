package repository

import (
	"encoding/json"
	"fmt"

	"os_service_api/internal/domain/entities"
)

// The SQL stores keep the aggregate as a JSON document next to the columns
// the saga query filters on.

func encodeOrderDocument(s entities.OrderSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

func decodeOrderDocument(doc []byte, version int64) (*entities.Order, error) {
	var s entities.OrderSnapshot
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("decode order document: %w", err)
	}
	s.Version = version
	return entities.RestoreOrder(s)
}

func requiresStockReduction(s entities.OrderSnapshot) bool {
	return s.StockState != "" && s.StockState != entities.StockInteractionNone
}
