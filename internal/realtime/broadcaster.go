package realtime

import (
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
)

// Broadcaster publishes menu events to the handles of a store room.
// Delivery is at-most-once and best-effort: nothing is queued for handles
// that join later and failed handles are skipped.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger

	locksMu   sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewBroadcaster creates a broadcaster over registry
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		registry:  registry,
		logger:    logger,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// roomLock returns the lock serializing publishes to one room
func (b *Broadcaster) roomLock(storeID string) *sync.Mutex {
	b.locksMu.Lock()
	defer b.locksMu.Unlock()

	l, ok := b.roomLocks[storeID]
	if !ok {
		l = &sync.Mutex{}
		b.roomLocks[storeID] = l
	}
	return l
}

// Publish delivers event to every handle subscribed to storeID when the call
// starts and returns how many accepted it. Publishes to the same room are
// delivered one after another, in call order.
func (b *Broadcaster) Publish(storeID string, event models.BroadcastEvent) int {
	l := b.roomLock(storeID)
	l.Lock()
	defer l.Unlock()

	event.StoreID = storeID
	handles := b.registry.Snapshot(storeID)

	delivered := 0
	for _, h := range handles {
		if err := h.Emit(event); err != nil {
			b.logger.Debug("event not delivered",
				"store_id", storeID,
				"event", event.Kind,
				"handle_id", h.ID(),
				"error", err,
			)
			continue
		}
		delivered++
	}

	b.logger.Debug("event published",
		"store_id", storeID,
		"event", event.Kind,
		"subscribers", len(handles),
		"delivered", delivered,
	)
	return delivered
}

// PublishAvailability announces that one menu item was toggled
func (b *Broadcaster) PublishAvailability(storeID, menuItemID string, available bool) int {
	return b.Publish(storeID, models.BroadcastEvent{
		Kind: models.EventAvailabilityChanged,
		Payload: models.AvailabilityPayload{
			MenuItemID:  menuItemID,
			IsAvailable: available,
			StoreID:     storeID,
		},
	})
}

// PublishStatistics announces the current item counts of a store menu
func (b *Broadcaster) PublishStatistics(stats models.MenuStats) int {
	return b.Publish(stats.StoreID, models.BroadcastEvent{
		Kind: models.EventStatisticsUpdated,
		Payload: models.StatisticsPayload{
			TotalItems:     stats.TotalItems,
			AvailableItems: stats.AvailableItems,
			StoreID:        stats.StoreID,
		},
	})
}
