package hydration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores water intake, the hydration profile and achievements
// Database: journal.db (water_log, hydration_profile, hydration_achievements)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new hydration repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "hydration").Logger(),
	}
}

// Increment adds one cup on date and returns the new state. Achievements are
// unlocked in the same transaction; only newly unlocked ones are returned.
func (r *Repository) Increment(ctx context.Context, date string, goal int) (Progress, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	day, err := getDay(ctx, tx, date)
	if err != nil {
		return Progress{}, err
	}
	profile, err := getProfile(ctx, tx)
	if err != nil {
		return Progress{}, err
	}

	profile, day, qualified := Advance(profile, day, goal)
	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO water_log (date, cups, goal_met, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			cups = excluded.cups,
			goal_met = excluded.goal_met,
			updated_at = excluded.updated_at
	`, day.Date, day.Cups, day.GoalMet, now.Unix())
	if err != nil {
		return Progress{}, fmt.Errorf("failed to save water for %s: %w", date, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE hydration_profile
		SET lifetime_cups = ?, level = ?, current_streak = ?, best_streak = ?, last_goal_date = ?
		WHERE id = 1
	`, profile.LifetimeCups, profile.Level, profile.CurrentStreak, profile.BestStreak, profile.LastGoalDate)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to save hydration profile: %w", err)
	}

	unlocked := []Achievement{}
	for _, id := range qualified {
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO hydration_achievements (id, unlocked_at, seen)
			VALUES (?, ?, 0)
		`, string(id), now.Unix())
		if err != nil {
			return Progress{}, fmt.Errorf("failed to unlock achievement %s: %w", id, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			unlocked = append(unlocked, Achievement{
				ID:         id,
				Name:       AchievementNames[id],
				UnlockedAt: time.Unix(now.Unix(), 0).UTC(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return Progress{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return Progress{Day: day, Profile: profile, Goal: goal, NewAchievements: unlocked}, nil
}

// Day returns the intake for date, zero when nothing was logged
func (r *Repository) Day(ctx context.Context, date string) (Day, error) {
	return getDay(ctx, r.db, date)
}

// Range returns the logged days between start and end inclusive, in date order
func (r *Repository) Range(ctx context.Context, start, end string) ([]Day, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, cups, goal_met FROM water_log
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query water log: %w", err)
	}
	defer rows.Close()

	days := []Day{}
	for rows.Next() {
		var d Day
		if err := rows.Scan(&d.Date, &d.Cups, &d.GoalMet); err != nil {
			return nil, fmt.Errorf("failed to scan water log: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Profile returns the lifetime hydration state
func (r *Repository) Profile(ctx context.Context) (Profile, error) {
	return getProfile(ctx, r.db)
}

// Achievements returns every unlocked achievement in unlock order
func (r *Repository) Achievements(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, unlocked_at, seen FROM hydration_achievements
		ORDER BY unlocked_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	achievements := []Achievement{}
	for rows.Next() {
		var (
			a          Achievement
			id         string
			unlockedAt int64
		)
		if err := rows.Scan(&id, &unlockedAt, &a.Seen); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.ID = AchievementID(id)
		a.Name = AchievementNames[a.ID]
		a.UnlockedAt = time.Unix(unlockedAt, 0).UTC()
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// MarkSeen marks every achievement as seen and returns how many changed
func (r *Repository) MarkSeen(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE hydration_achievements SET seen = 1 WHERE seen = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark achievements seen: %w", err)
	}
	return result.RowsAffected()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getDay(ctx context.Context, q querier, date string) (Day, error) {
	day := Day{Date: date}
	err := q.QueryRowContext(ctx, `SELECT cups, goal_met FROM water_log WHERE date = ?`, date).
		Scan(&day.Cups, &day.GoalMet)
	if err == sql.ErrNoRows {
		return day, nil
	}
	if err != nil {
		return Day{}, fmt.Errorf("failed to get water for %s: %w", date, err)
	}
	return day, nil
}

func getProfile(ctx context.Context, q querier) (Profile, error) {
	var p Profile
	err := q.QueryRowContext(ctx, `
		SELECT lifetime_cups, level, current_streak, best_streak, last_goal_date
		FROM hydration_profile WHERE id = 1
	`).Scan(&p.LifetimeCups, &p.Level, &p.CurrentStreak, &p.BestStreak, &p.LastGoalDate)
	if err == sql.ErrNoRows {
		return Profile{Level: 1}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get hydration profile: %w", err)
	}
	return p, nil
}
