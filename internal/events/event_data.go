package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// EntryLoggedData contains data for EntryLogged events
type EntryLoggedData struct {
	EntryID  string  `json:"entry_id"`
	Date     string  `json:"date"`
	FoodID   string  `json:"food_id"`
	Source   string  `json:"source"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// EventType returns the event type for EntryLoggedData
func (d *EntryLoggedData) EventType() EventType {
	return EntryLogged
}

// EntryDeletedData contains data for EntryDeleted events
type EntryDeletedData struct {
	EntryID string `json:"entry_id"`
	Date    string `json:"date"`
}

// EventType returns the event type for EntryDeletedData
func (d *EntryDeletedData) EventType() EventType {
	return EntryDeleted
}

// EntryAmendedData contains data for EntryAmended events
type EntryAmendedData struct {
	EntryID    string `json:"entry_id"`
	Supersedes string `json:"supersedes"`
	Date       string `json:"date"`
}

// EventType returns the event type for EntryAmendedData
func (d *EntryAmendedData) EventType() EventType {
	return EntryAmended
}

// DayStatusChangedData contains data for DayStatusChanged events
type DayStatusChangedData struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// EventType returns the event type for DayStatusChangedData
func (d *DayStatusChangedData) EventType() EventType {
	return DayStatusChanged
}

// CatalogChangedData contains data for CatalogChanged events
type CatalogChangedData struct {
	Version int64  `json:"version"`
	FoodID  string `json:"food_id,omitempty"`
	Action  string `json:"action"` // upsert, delete, recipe, price
}

// EventType returns the event type for CatalogChangedData
func (d *CatalogChangedData) EventType() EventType {
	return CatalogChanged
}

// PriceReviewedData contains data for PriceReviewed events
type PriceReviewedData struct {
	ReviewID int64   `json:"review_id"`
	FoodID   string  `json:"food_id"`
	Price    float64 `json:"price"`
	Approved bool    `json:"approved"`
}

// EventType returns the event type for PriceReviewedData
func (d *PriceReviewedData) EventType() EventType {
	return PriceReviewed
}

// PlanGeneratedData contains data for PlanGenerated events
type PlanGeneratedData struct {
	PlanID         string  `json:"plan_id,omitempty"`
	TargetCalories int     `json:"target_calories"`
	Budget         float64 `json:"budget"`
	MealCount      int     `json:"meal_count"`
	TotalCalories  float64 `json:"total_calories"`
	TotalPrice     float64 `json:"total_price"`
	Retries        int     `json:"retries"`
	Feasible       bool    `json:"feasible"`
	Constraint     string  `json:"constraint,omitempty"`
}

// EventType returns the event type for PlanGeneratedData
func (d *PlanGeneratedData) EventType() EventType {
	return PlanGenerated
}

// PlanAppliedData contains data for PlanApplied events
type PlanAppliedData struct {
	PlanID   string   `json:"plan_id"`
	Date     string   `json:"date"`
	EntryIDs []string `json:"entry_ids"`
}

// EventType returns the event type for PlanAppliedData
func (d *PlanAppliedData) EventType() EventType {
	return PlanApplied
}

// WaterLoggedData contains data for WaterLogged events
type WaterLoggedData struct {
	Date    string `json:"date"`
	Cups    int    `json:"cups"`
	GoalMet bool   `json:"goal_met"`
	Streak  int    `json:"streak"`
}

// EventType returns the event type for WaterLoggedData
func (d *WaterLoggedData) EventType() EventType {
	return WaterLogged
}

// WeightLoggedData contains data for WeightLogged events
type WeightLoggedData struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// EventType returns the event type for WeightLoggedData
func (d *WeightLoggedData) EventType() EventType {
	return WeightLogged
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EventType returns the event type for SettingsChangedData
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
	Databases int    `json:"databases"`
	Pruned    int    `json:"pruned"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
