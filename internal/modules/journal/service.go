package journal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/aggregation"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Timeline defaults, relative to today
const (
	TimelineDaysBack    = 7
	TimelineDaysForward = 30
	MaxTimelineDays     = 366
	MaxHistoryLimit     = 500
	DefaultHistoryLimit = 50
	MaxReportDays       = 365
)

// CatalogSource provides the catalog snapshot entries are resolved against
type CatalogSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Version(ctx context.Context) (int64, error)
}

// GoalsSource provides the daily goals and tunables
type GoalsSource interface {
	Goals() domain.Goals
	Float(key string) float64
}

// Service logs food, toggles cheat days and serves day aggregates
type Service struct {
	entries  *EntryRepository
	statuses *DayStatusRepository
	cache    *DayCache
	catalog  CatalogSource
	goals    GoalsSource
	events   *events.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a journal service. eventManager may be nil.
func NewService(
	entries *EntryRepository,
	statuses *DayStatusRepository,
	cache *DayCache,
	catalog CatalogSource,
	goals GoalsSource,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		entries:  entries,
		statuses: statuses,
		cache:    cache,
		catalog:  catalog,
		goals:    goals,
		events:   eventManager,
		log:      log.With().Str("service", "journal").Logger(),
		now:      time.Now,
	}
}

// SubscribeToEvents drops cached aggregates when the goals they were compared against change
func (s *Service) SubscribeToEvents(bus *events.Bus) {
	bus.Subscribe(events.SettingsChanged, func(e *events.Event) {
		n, err := s.cache.InvalidateAll(context.Background())
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to clear day cache after settings change")
			return
		}
		s.log.Debug().Int64("cleared", n).Msg("Day cache cleared after settings change")
	})
}

// LogEntry validates and records an entry, then invalidates its day
func (s *Service) LogEntry(ctx context.Context, in EntryInput) (domain.LoggedEntry, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.LoggedEntry{}, err
	}
	entry, err := s.validate(in, snap)
	if err != nil {
		return domain.LoggedEntry{}, err
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		return domain.LoggedEntry{}, err
	}
	s.invalidate(ctx, created.Date)
	s.logged(created)
	return created, nil
}

// LogEntries validates every input against one catalog snapshot and stores
// them in a single transaction. Nothing is stored when any input is invalid.
func (s *Service) LogEntries(ctx context.Context, ins []EntryInput) ([]domain.LoggedEntry, error) {
	if len(ins) == 0 {
		return nil, domain.NewValidationError("entries", "at least one entry is required")
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LoggedEntry, len(ins))
	for i, in := range ins {
		if entries[i], err = s.validate(in, snap); err != nil {
			return nil, err
		}
	}

	created, err := s.entries.CreateBatch(ctx, entries)
	if err != nil {
		return nil, err
	}

	dates := make(map[string]bool)
	for _, e := range created {
		if !dates[e.Date] {
			dates[e.Date] = true
			s.invalidate(ctx, e.Date)
		}
		s.logged(e)
	}
	return created, nil
}

func (s *Service) logged(e domain.LoggedEntry) {
	s.log.Info().
		Str("entry_id", e.ID).
		Str("date", e.Date).
		Str("food_id", e.FoodID).
		Float64("quantity", e.Quantity).
		Msg("Entry logged")
	s.events.EmitTyped(events.EntryLogged, "journal", &events.EntryLoggedData{
		EntryID:  e.ID,
		Date:     e.Date,
		FoodID:   e.FoodID,
		Source:   string(e.Source),
		Quantity: e.Quantity,
		Unit:     string(e.Unit),
	})
}

// DeleteEntry soft-deletes an entry
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	deleted, err := s.entries.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, deleted.Date)

	s.events.EmitTyped(events.EntryDeleted, "journal", &events.EntryDeletedData{
		EntryID: deleted.ID,
		Date:    deleted.Date,
	})
	return nil
}

// AmendEntry replaces an entry with a corrected one. The date may change;
// both the old and the new date are invalidated.
func (s *Service) AmendEntry(ctx context.Context, id string, in EntryInput) (domain.LoggedEntry, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.LoggedEntry{}, err
	}
	replacement, err := s.validate(in, snap)
	if err != nil {
		return domain.LoggedEntry{}, err
	}

	old, amended, err := s.entries.Amend(ctx, id, replacement)
	if err != nil {
		return domain.LoggedEntry{}, err
	}
	s.invalidate(ctx, old.Date)
	if amended.Date != old.Date {
		s.invalidate(ctx, amended.Date)
	}

	s.events.EmitTyped(events.EntryAmended, "journal", &events.EntryAmendedData{
		EntryID:    amended.ID,
		Supersedes: old.ID,
		Date:       amended.Date,
	})
	return amended, nil
}

// Entries returns the active entries of a date
func (s *Service) Entries(ctx context.Context, date string) ([]domain.LoggedEntry, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, domain.NewValidationError("date", err.Error())
	}
	return s.entries.ListByDate(ctx, date)
}

// Day returns the aggregate of a date, from cache when fresh
func (s *Service) Day(ctx context.Context, date string) (domain.DayRecord, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return domain.DayRecord{}, domain.NewValidationError("date", err.Error())
	}

	version, err := s.catalog.Version(ctx)
	if err != nil {
		return domain.DayRecord{}, err
	}

	cached, err := s.cache.GetIfFresh(ctx, date, version)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("Day cache read failed, recomputing")
	} else if cached != nil {
		return *cached, nil
	}

	status, err := s.statuses.Get(ctx, date)
	if err != nil {
		return domain.DayRecord{}, err
	}
	record, err := s.compute(ctx, date, status)
	if err != nil {
		return domain.DayRecord{}, err
	}

	s.store(ctx, record, version)
	return record, nil
}

// ToggleDay flips a date between standard and cheat.
// The returned record has the same totals as before with the goal comparison redone.
func (s *Service) ToggleDay(ctx context.Context, date string) (domain.DayRecord, error) {
	current, err := s.Day(ctx, date)
	if err != nil {
		return domain.DayRecord{}, err
	}

	toggled := aggregation.ToggleStatus(current, s.goals.Goals())
	if err := s.statuses.Set(ctx, date, toggled.Status); err != nil {
		return domain.DayRecord{}, err
	}

	version, err := s.catalog.Version(ctx)
	if err != nil {
		s.invalidate(ctx, date)
	} else {
		s.store(ctx, toggled, version)
	}

	s.log.Info().Str("date", date).Str("status", string(toggled.Status)).Msg("Day status toggled")
	s.events.EmitTyped(events.DayStatusChanged, "journal", &events.DayStatusChangedData{
		Date:   date,
		Status: string(toggled.Status),
	})
	return toggled, nil
}

// Timeline returns the status of every date in [start, end].
// Empty bounds default to 7 days back and 30 days forward from today.
func (s *Service) Timeline(ctx context.Context, start, end string) ([]TimelineDay, error) {
	today := utils.FormatDate(s.now())
	var err error
	if start == "" {
		if start, err = utils.AddDays(today, -TimelineDaysBack); err != nil {
			return nil, err
		}
	}
	if end == "" {
		if end, err = utils.AddDays(today, TimelineDaysForward); err != nil {
			return nil, err
		}
	}

	dates, err := utils.DateRange(start, end, MaxTimelineDays)
	if err != nil {
		return nil, domain.NewValidationError("range", err.Error())
	}

	statuses, err := s.statuses.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}

	days := make([]TimelineDay, len(dates))
	for i, d := range dates {
		status, ok := statuses[d]
		if !ok {
			status = domain.DayStandard
		}
		days[i] = TimelineDay{Date: d, Status: status, IsToday: d == today}
	}
	return days, nil
}

// History returns the newest entries with the nutrition they were logged with
func (s *Service) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	entries, err := s.entries.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		item := HistoryItem{Entry: e, FoodName: e.FoodName}
		if item.FoodName == "" {
			if food, ok := snap.LookupFood(e.FoodID, e.Source); ok {
				item.FoodName = food.Name
			}
		}
		if n, err := aggregation.Contribution(e, snap); err == nil {
			item.Nutrition = &n
		}
		items = append(items, item)
	}
	return items, nil
}

// FinancialReport summarizes spend over the days ending today, at the prices
// entries were logged with. Entries that carry no logged nutrition and whose
// food no longer resolves are counted in SkippedEntries.
func (s *Service) FinancialReport(ctx context.Context, days int) (FinancialReport, error) {
	if days <= 0 {
		days = int(s.goals.Float(settings.KeyAnalyticsDefaultDays))
		if days <= 0 {
			days = 30
		}
	}
	if days > MaxReportDays {
		return FinancialReport{}, domain.NewValidationError("days", fmt.Sprintf("must be at most %d", MaxReportDays))
	}

	end := utils.FormatDate(s.now())
	start, err := utils.AddDays(end, -(days - 1))
	if err != nil {
		return FinancialReport{}, err
	}
	dates, err := utils.DateRange(start, end, MaxReportDays)
	if err != nil {
		return FinancialReport{}, err
	}

	entries, err := s.entries.ListRange(ctx, start, end)
	if err != nil {
		return FinancialReport{}, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return FinancialReport{}, err
	}

	report := FinancialReport{
		Start:           start,
		End:             end,
		Days:            days,
		SourceBreakdown: make(map[string]float64),
	}

	byDate := make(map[string]*DailySpend, len(dates))
	daily := make([]DailySpend, len(dates))
	for i, d := range dates {
		daily[i].Date = d
		byDate[d] = &daily[i]
	}

	counted := 0
	for _, e := range entries {
		n, err := aggregation.Contribution(e, snap)
		if err != nil {
			report.SkippedEntries++
			continue
		}
		day := byDate[e.Date]
		if day == nil {
			continue
		}
		day.Spend += n.Price
		day.Calories += n.Calories
		day.ProteinG += n.ProteinG
		report.SourceBreakdown[string(e.Source)]++
		counted++
	}

	spends := make([]float64, len(daily))
	for i, d := range daily {
		spends[i] = d.Spend
		report.TotalSpend += d.Spend
		report.TotalCalories += d.Calories
		report.TotalProteinG += d.ProteinG
		if d.Spend > 0 || d.Calories > 0 {
			report.LoggedDays++
		}
	}
	report.Daily = daily
	report.AverageDailySpend = stat.Mean(spends, nil)
	if len(spends) > 1 {
		report.SpendStdDev = stat.StdDev(spends, nil)
	}
	if report.TotalSpend > 0 {
		report.CaloriesPerUnit = report.TotalCalories / report.TotalSpend
	}
	if report.TotalProteinG > 0 {
		report.CostPerProteinGram = report.TotalSpend / report.TotalProteinG
	}
	for src, n := range report.SourceBreakdown {
		report.SourceBreakdown[src] = math.Round(n/float64(counted)*1000) / 10
	}

	report.EfficiencyLabel = EfficiencyModerate
	if report.TotalProteinG > 0 && report.CostPerProteinGram < highEfficiencyCostPerProtein {
		report.EfficiencyLabel = EfficiencyHigh
	}
	return report, nil
}

// CleanupCache removes expired or outdated cached aggregates
func (s *Service) CleanupCache(ctx context.Context) (int64, error) {
	version, err := s.catalog.Version(ctx)
	if err != nil {
		return 0, err
	}
	return s.cache.DeleteExpired(ctx, version)
}

func (s *Service) compute(ctx context.Context, date string, status domain.DayStatus) (domain.DayRecord, error) {
	entries, err := s.entries.ListByDate(ctx, date)
	if err != nil {
		return domain.DayRecord{}, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.DayRecord{}, err
	}
	return aggregation.Aggregate(date, entries, snap, status, s.goals.Goals())
}

// validate checks an input and resolves it against snap into an entry that
// carries its nutrition and price as of now
func (s *Service) validate(in EntryInput, snap domain.FoodLookup) (domain.LoggedEntry, error) {
	if _, err := utils.ParseDate(in.Date); err != nil {
		return domain.LoggedEntry{}, domain.NewValidationError("date", err.Error())
	}
	if in.Source == "" {
		in.Source = domain.SourceCatalog
	}
	if !in.Source.Valid() {
		return domain.LoggedEntry{}, domain.NewValidationError("source", fmt.Sprintf("unknown source %q", in.Source))
	}
	if in.Unit == "" {
		in.Unit = domain.UnitGrams
	}
	if in.Unit != domain.UnitGrams && in.Unit != domain.UnitServings {
		return domain.LoggedEntry{}, domain.NewValidationError("unit", fmt.Sprintf("unknown unit %q", in.Unit))
	}
	if in.PrepStyle == "" {
		in.PrepStyle = domain.PrepStandard
	}
	switch in.PrepStyle {
	case domain.PrepLight, domain.PrepStandard, domain.PrepHeavy:
	default:
		return domain.LoggedEntry{}, domain.NewValidationError("prep_style", fmt.Sprintf("unknown prep style %q", in.PrepStyle))
	}
	if !(in.Quantity > 0) || math.IsInf(in.Quantity, 0) {
		return domain.LoggedEntry{}, &domain.InvalidServingError{FoodID: in.FoodID, WeightG: in.Quantity}
	}

	if _, ok := snap.LookupFood(in.FoodID, in.Source); !ok {
		return domain.LoggedEntry{}, domain.NewValidationError("food_id", fmt.Sprintf("unknown %s food %q", in.Source, in.FoodID))
	}

	return aggregation.Freeze(domain.LoggedEntry{
		Date:      in.Date,
		FoodID:    in.FoodID,
		Source:    in.Source,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		PrepStyle: in.PrepStyle,
	}, snap)
}

func (s *Service) invalidate(ctx context.Context, date string) {
	if err := s.cache.Invalidate(ctx, date); err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("Failed to invalidate cached day")
	}
}

func (s *Service) store(ctx context.Context, record domain.DayRecord, version int64) {
	ttl := DefaultDayTTL
	if h := s.goals.Float(settings.KeyDayCacheTTLHours); h > 0 {
		ttl = time.Duration(h * float64(time.Hour))
	}
	if err := s.cache.Store(ctx, record, version, ttl); err != nil {
		s.log.Warn().Err(err).Str("date", record.Date).Msg("Failed to cache day")
	}
}
