package models

// EventKind names a realtime event.
type EventKind string

const (
	EventAvailabilityChanged EventKind = "menu.availability.changed"
	EventStatisticsUpdated   EventKind = "menu.statistics.updated"
)

// BroadcastEvent is delivered to the handles of one store room. It only lives
// for the duration of a publish.
type BroadcastEvent struct {
	Kind    EventKind   `json:"event"`
	StoreID string      `json:"-"`
	Payload interface{} `json:"data"`
}

// AvailabilityPayload is the wire payload of menu.availability.changed
type AvailabilityPayload struct {
	MenuItemID  string `json:"menuItemId"`
	IsAvailable bool   `json:"isAvailable"`
	StoreID     string `json:"storeId"`
}

// StatisticsPayload is the wire payload of menu.statistics.updated
type StatisticsPayload struct {
	TotalItems     int    `json:"totalItems"`
	AvailableItems int    `json:"availableItems"`
	StoreID        string `json:"storeId"`
}

// ClientMessage is a frame sent by a realtime client. Data carries the store
// identifier for join-store and leave-store.
type ClientMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

const (
	ClientJoinStore  = "join-store"
	ClientLeaveStore = "leave-store"
)
