package weight

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/rs/zerolog"
)

// ProfileWriter reads the trend window and keeps the profile weight current
type ProfileWriter interface {
	Int(key string) int
	RecordWeight(weightKg float64) error
}

// Service logs body weight and reports its trend
type Service struct {
	repo    *Repository
	profile ProfileWriter
	events  *events.Manager
	log     zerolog.Logger
	today   func() string
}

// NewService creates a weight service. eventManager may be nil.
func NewService(repo *Repository, profile ProfileWriter, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		profile: profile,
		events:  eventManager,
		log:     log.With().Str("service", "weight").Logger(),
		today:   utils.Today,
	}
}

// Log records a weight. When it is the newest entry the profile weight follows it,
// so targets are recomputed from the latest measurement.
func (s *Service) Log(ctx context.Context, in Input) (Entry, error) {
	if in.Date == "" {
		in.Date = s.today()
	}
	if _, err := utils.ParseDate(in.Date); err != nil {
		return Entry{}, domain.NewValidationError("date", err.Error())
	}
	if in.Date > s.today() {
		return Entry{}, domain.NewValidationError("date", "cannot log weight for a future date")
	}
	if math.IsNaN(in.WeightKg) || in.WeightKg < MinWeightKg || in.WeightKg > MaxWeightKg {
		return Entry{}, domain.NewValidationError("weight_kg",
			fmt.Sprintf("must be between %.0f and %.0f, got %v", MinWeightKg, MaxWeightKg, in.WeightKg))
	}

	entry, err := s.repo.Upsert(ctx, in.Date, in.WeightKg)
	if err != nil {
		return Entry{}, err
	}

	latest, err := s.repo.Latest(ctx)
	if err != nil {
		return Entry{}, err
	}
	if latest.Date == entry.Date {
		if err := s.profile.RecordWeight(entry.WeightKg); err != nil {
			s.log.Warn().Err(err).Msg("Failed to update profile weight")
		}
	}

	s.log.Info().Str("date", entry.Date).Float64("weight_kg", entry.WeightKg).Msg("Weight logged")
	s.events.EmitTyped(events.WeightLogged, "weight", &events.WeightLoggedData{
		Date:     entry.Date,
		WeightKg: entry.WeightKg,
	})
	return entry, nil
}

// History returns the trailing days of entries ending today, with their trend
func (s *Service) History(ctx context.Context, days int) (History, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		return History{}, domain.NewValidationError("days", fmt.Sprintf("must be at most %d", MaxHistoryDays))
	}

	end := s.today()
	start, err := utils.AddDays(end, -(days - 1))
	if err != nil {
		return History{}, err
	}

	entries, err := s.repo.Range(ctx, start, end)
	if err != nil {
		return History{}, err
	}

	weights := make([]float64, len(entries))
	for i, e := range entries {
		weights[i] = e.WeightKg
	}

	window := s.profile.Int(settings.KeyWeightTrendWindow)
	if window < 2 {
		window = DefaultTrendWindow
	}

	return History{
		Start:   start,
		End:     end,
		Entries: entries,
		Trend:   ComputeTrend(weights, window),
	}, nil
}

// Delete removes the entry for a date. The profile weight falls back to the
// newest remaining entry.
func (s *Service) Delete(ctx context.Context, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return domain.NewValidationError("date", err.Error())
	}
	if err := s.repo.Delete(ctx, date); err != nil {
		return err
	}

	latest, err := s.repo.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.profile.RecordWeight(latest.WeightKg); err != nil {
		s.log.Warn().Err(err).Msg("Failed to update profile weight")
	}
	return nil
}
