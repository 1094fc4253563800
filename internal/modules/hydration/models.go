// Package hydration tracks daily water intake with streaks, levels and achievements.
package hydration

import "time"

// AchievementID names an unlockable hydration achievement
type AchievementID string

const (
	AchievementFirstDrop   AchievementID = "FIRST_DROP"
	AchievementHotStreak   AchievementID = "HOT_STREAK"
	AchievementHydroHero   AchievementID = "HYDRO_HERO"
	AchievementOceanMaster AchievementID = "OCEAN_MASTER"
	AchievementLevel5      AchievementID = "LEVEL_5"
	AchievementLevel10     AchievementID = "LEVEL_10"
)

// AchievementNames are the display names of the achievements
var AchievementNames = map[AchievementID]string{
	AchievementFirstDrop:   "First Drop",
	AchievementHotStreak:   "Hot Streak",
	AchievementHydroHero:   "Hydro Hero",
	AchievementOceanMaster: "Ocean Master",
	AchievementLevel5:      "Level 5 Unlocked",
	AchievementLevel10:     "Level 10 Unlocked",
}

const (
	// CupsPerLevel is the lifetime cup count between levels
	CupsPerLevel = 50
	// DefaultGoalCups applies when hydration_goal_cups is unset
	DefaultGoalCups = 8

	hotStreakDays   = 7
	hydroHeroDays   = 30
	oceanMasterCups = 100
)

// Day is one date's water intake
type Day struct {
	Date    string `json:"date"`
	Cups    int    `json:"cups"`
	GoalMet bool   `json:"goal_met"`
}

// Profile is the lifetime hydration state
type Profile struct {
	LastGoalDate  string `json:"last_goal_date,omitempty"`
	LifetimeCups  int    `json:"total_lifetime"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
}

// Achievement is an unlocked achievement
type Achievement struct {
	UnlockedAt time.Time     `json:"unlocked_at"`
	ID         AchievementID `json:"id"`
	Name       string        `json:"name"`
	Seen       bool          `json:"seen"`
}

// Progress is the outcome of one increment
type Progress struct {
	Day             Day           `json:"day"`
	Profile         Profile       `json:"profile"`
	Goal            int           `json:"goal"`
	NewAchievements []Achievement `json:"new_achievements"`
}

// Stats is the hydration overview
type Stats struct {
	Today        Day           `json:"today"`
	Profile      Profile       `json:"profile"`
	Goal         int           `json:"goal"`
	Achievements []Achievement `json:"achievements"`
}
