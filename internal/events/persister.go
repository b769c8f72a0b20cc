package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

// StoragePersister translates domain events to storage events.
type StoragePersister struct {
	repo    storage.EventRepository
	timeout time.Duration
}

// NewStoragePersister writes events to repo, bounding each write by timeout.
func NewStoragePersister(repo storage.EventRepository, timeout time.Duration) *StoragePersister {
	return &StoragePersister{repo: repo, timeout: timeout}
}

// Append implements EventPersister.
func (p *StoragePersister) Append(event GameEvent) error {
	stored, err := ToStorage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	err = p.repo.Append(ctx, stored)
	metrics.Get().RecordStoreWrite(time.Since(start), err)
	return err
}

// ToStorage flattens the typed payload into the generic storage form.
func ToStorage(event GameEvent) (storage.GameEvent, error) {
	payloadMap := make(map[string]interface{})
	if event.Payload != nil {
		payloadBytes, err := json.Marshal(event.Payload)
		if err != nil {
			return storage.GameEvent{}, fmt.Errorf("failed to marshal payload: %w", err)
		}
		if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
			return storage.GameEvent{}, fmt.Errorf("payload is not an object: %w", err)
		}
	}

	return storage.GameEvent{
		ID:        event.ID,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		RoomID:    event.RoomID,
		Payload:   payloadMap,
	}, nil
}
