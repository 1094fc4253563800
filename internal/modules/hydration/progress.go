package hydration

import (
	"github.com/aristath/nutriplan/internal/utils"
)

// Advance applies one cup on date to the day and the profile and returns the
// achievements the new state qualifies for.
//
// Reaching the goal marks the day met once; later cups on the same day never
// extend the streak again. The streak continues only when the previous goal
// day was the day before, otherwise it restarts at 1.
func Advance(profile Profile, day Day, goal int) (Profile, Day, []AchievementID) {
	day.Cups++
	profile.LifetimeCups++

	if day.Cups >= goal && !day.GoalMet {
		day.GoalMet = true
		if prev, err := utils.AddDays(day.Date, -1); err == nil && prev == profile.LastGoalDate {
			profile.CurrentStreak++
		} else {
			profile.CurrentStreak = 1
		}
		profile.LastGoalDate = day.Date
		profile.BestStreak = max(profile.BestStreak, profile.CurrentStreak)
	}

	profile.Level = max(profile.Level, profile.LifetimeCups/CupsPerLevel+1)

	return profile, day, qualifying(profile)
}

// CurrentStreak is the streak as of today: it lapses once a full day passes
// without meeting the goal
func CurrentStreak(profile Profile, today string) int {
	if profile.LastGoalDate == "" {
		return 0
	}
	if profile.LastGoalDate == today {
		return profile.CurrentStreak
	}
	if prev, err := utils.AddDays(today, -1); err == nil && prev == profile.LastGoalDate {
		return profile.CurrentStreak
	}
	return 0
}

func qualifying(p Profile) []AchievementID {
	var ids []AchievementID
	if p.LifetimeCups >= 1 {
		ids = append(ids, AchievementFirstDrop)
	}
	if p.CurrentStreak >= hotStreakDays {
		ids = append(ids, AchievementHotStreak)
	}
	if p.CurrentStreak >= hydroHeroDays {
		ids = append(ids, AchievementHydroHero)
	}
	if p.LifetimeCups >= oceanMasterCups {
		ids = append(ids, AchievementOceanMaster)
	}
	if p.Level >= 5 {
		ids = append(ids, AchievementLevel5)
	}
	if p.Level >= 10 {
		ids = append(ids, AchievementLevel10)
	}
	return ids
}
