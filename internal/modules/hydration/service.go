package hydration

import (
	"context"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/rs/zerolog"
)

// MaxRangeDays bounds History queries
const MaxRangeDays = 366

// SettingsReader reads the daily cup goal
type SettingsReader interface {
	Int(key string) int
}

// Service records water intake. Intake only ever goes up: there is no decrement.
type Service struct {
	repo     *Repository
	settings SettingsReader
	events   *events.Manager
	log      zerolog.Logger
	today    func() string
}

// NewService creates a hydration service. eventManager may be nil.
func NewService(repo *Repository, settingsReader SettingsReader, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settingsReader,
		events:   eventManager,
		log:      log.With().Str("service", "hydration").Logger(),
		today:    utils.Today,
	}
}

// Goal returns the daily cup goal
func (s *Service) Goal() int {
	if goal := s.settings.Int(settings.KeyHydrationGoalCups); goal > 0 {
		return goal
	}
	return DefaultGoalCups
}

// Increment adds one cup to today
func (s *Service) Increment(ctx context.Context) (Progress, error) {
	date := s.today()
	progress, err := s.repo.Increment(ctx, date, s.Goal())
	if err != nil {
		return Progress{}, err
	}

	evt := s.log.Debug()
	if len(progress.NewAchievements) > 0 {
		evt = s.log.Info()
	}
	evt.Str("date", date).
		Int("cups", progress.Day.Cups).
		Bool("goal_met", progress.Day.GoalMet).
		Int("streak", progress.Profile.CurrentStreak).
		Int("new_achievements", len(progress.NewAchievements)).
		Msg("Water logged")

	s.events.EmitTyped(events.WaterLogged, "hydration", &events.WaterLoggedData{
		Date:    date,
		Cups:    progress.Day.Cups,
		GoalMet: progress.Day.GoalMet,
		Streak:  progress.Profile.CurrentStreak,
	})
	return progress, nil
}

// Stats returns today's intake, the profile and all achievements
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	date := s.today()
	day, err := s.repo.Day(ctx, date)
	if err != nil {
		return Stats{}, err
	}
	profile, err := s.repo.Profile(ctx)
	if err != nil {
		return Stats{}, err
	}
	achievements, err := s.repo.Achievements(ctx)
	if err != nil {
		return Stats{}, err
	}

	profile.CurrentStreak = CurrentStreak(profile, date)
	return Stats{Today: day, Profile: profile, Goal: s.Goal(), Achievements: achievements}, nil
}

// History returns the logged days between start and end inclusive
func (s *Service) History(ctx context.Context, start, end string) ([]Day, error) {
	if _, err := utils.DateRange(start, end, MaxRangeDays); err != nil {
		return nil, domain.NewValidationError("range", err.Error())
	}
	return s.repo.Range(ctx, start, end)
}

// MarkAchievementsSeen acknowledges every unlocked achievement
func (s *Service) MarkAchievementsSeen(ctx context.Context) (int64, error) {
	return s.repo.MarkSeen(ctx)
}
