package interfaces

import "context"

//go:generate mockgen -source=processed_message_store_interface.go -destination=mocks/processed_message_store_mock.go -package=mock_interfaces

// IProcessedMessageStore remembers saga replies already applied so that
// redeliveries can skip the order store round-trip.
type IProcessedMessageStore interface {
	WasProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}
