// Package events provides the in-process event bus and typed event payloads.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	EntryLogged      EventType = "ENTRY_LOGGED"
	EntryDeleted     EventType = "ENTRY_DELETED"
	EntryAmended     EventType = "ENTRY_AMENDED"
	DayStatusChanged EventType = "DAY_STATUS_CHANGED"
	CatalogChanged   EventType = "CATALOG_CHANGED"
	PriceReviewed    EventType = "PRICE_REVIEWED"
	PlanGenerated    EventType = "PLAN_GENERATED"
	PlanApplied      EventType = "PLAN_APPLIED"
	WaterLogged      EventType = "WATER_LOGGED"
	WeightLogged     EventType = "WEIGHT_LOGGED"
	SettingsChanged  EventType = "SETTINGS_CHANGED"
	BackupCompleted  EventType = "BACKUP_COMPLETED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type the bus carries
var AllEventTypes = []EventType{
	EntryLogged,
	EntryDeleted,
	EntryAmended,
	DayStatusChanged,
	CatalogChanged,
	PriceReviewed,
	PlanGenerated,
	PlanApplied,
	WaterLogged,
	WeightLogged,
	SettingsChanged,
	BackupCompleted,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	typedData EventData
}

// GetTypedData returns the typed payload the event was emitted with, or nil
func (e *Event) GetTypedData() EventData {
	return e.typedData
}
