// Package model defines data structures used throughout the application.
package model

import "time"

// Item represents a stored resource. IDs are assigned by the store at
// creation time and are never reused.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemInput is the request body for create and update operations.
type ItemInput struct {
	Name string `json:"name"`
}

// ErrorResponse is the wire shape for all error responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ItemEvent represents a store change broadcast to WebSocket clients.
type ItemEvent struct {
	Type      string    `json:"type"`
	Item      Item      `json:"item"`
	Timestamp time.Time `json:"timestamp"`
}

// Item event types.
const (
	EventTypeItemCreated = "item_created"
	EventTypeItemUpdated = "item_updated"
	EventTypeItemDeleted = "item_deleted"
)

// NewItemEvent creates an ItemEvent for the given change type.
func NewItemEvent(eventType string, item Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
