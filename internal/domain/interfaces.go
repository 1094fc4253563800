package domain

import "context"

// FoodLookup resolves the food a logged entry references.
// Implementations must answer from an immutable snapshot so one aggregation
// sees one consistent catalog.
type FoodLookup interface {
	// LookupFood returns the food for id and source, or false when unknown
	LookupFood(id string, source Source) (FoodItem, bool)
}

// CatalogProvider returns the current sequence of FoodItem records
// Implemented by catalog.Repository (catalog.db)
type CatalogProvider interface {
	ListFoods(ctx context.Context) ([]FoodItem, error)
	ListRecipes(ctx context.Context) ([]Recipe, error)
}

// EntryProvider returns the logged entries for a date
// Implemented by journal.EntryRepository (journal.db)
type EntryProvider interface {
	ListByDate(ctx context.Context, date string) ([]LoggedEntry, error)
}

// DayFlagStore reads and writes the cheat-day flag
// Implemented by journal.DayStatusRepository (journal.db)
type DayFlagStore interface {
	Get(ctx context.Context, date string) (DayStatus, error)
	Set(ctx context.Context, date string, status DayStatus) error
}

// Snapshot is an immutable copy of the catalog, indexed for lookups.
// It satisfies FoodLookup.
type Snapshot struct {
	foods map[Source]map[string]FoodItem
	list  []FoodItem
}

// NewSnapshot copies foods into a new snapshot
func NewSnapshot(foods []FoodItem) *Snapshot {
	s := &Snapshot{
		foods: make(map[Source]map[string]FoodItem),
		list:  make([]FoodItem, len(foods)),
	}
	copy(s.list, foods)
	for _, f := range s.list {
		src := f.Source
		if src == "" {
			src = SourceCatalog
		}
		if s.foods[src] == nil {
			s.foods[src] = make(map[string]FoodItem)
		}
		s.foods[src][f.ID] = f
	}
	return s
}

// LookupFood implements FoodLookup
func (s *Snapshot) LookupFood(id string, source Source) (FoodItem, bool) {
	if source == "" {
		source = SourceCatalog
	}
	f, ok := s.foods[source][id]
	return f, ok
}

// Foods returns a copy of the snapshot's foods in insertion order
func (s *Snapshot) Foods() []FoodItem {
	out := make([]FoodItem, len(s.list))
	copy(out, s.list)
	return out
}

// Len returns the number of foods in the snapshot
func (s *Snapshot) Len() int {
	return len(s.list)
}
