package settings

import "github.com/aristath/nutriplan/internal/domain"

// Setting keys
const (
	KeyCalorieTolerance     = "plan_calorie_tolerance"
	KeyBestValuePercentile  = "badge_best_value_percentile"
	KeyHighProteinRatio     = "badge_high_protein_ratio"
	KeyDailyBudget          = "daily_budget"
	KeyDailyCalorieGoal     = "daily_calorie_goal"
	KeyMealsPerDay          = "meals_per_day"
	KeyGender               = "profile_gender"
	KeyAge                  = "profile_age"
	KeyHeightCm             = "profile_height_cm"
	KeyWeightKg             = "profile_weight_kg"
	KeyGoalWeightKg         = "profile_goal_weight_kg"
	KeyBodyFatPct           = "profile_body_fat_pct"
	KeyActivityLevel        = "profile_activity_level"
	KeyCity                 = "profile_city"
	KeyLocationCategory     = "profile_location_category"
	KeyHydrationGoalCups    = "hydration_goal_cups"
	KeyDayCacheTTLHours     = "cache_day_ttl_hours"
	KeyPlanTTLHours         = "plan_ttl_hours"
	KeyBackupEnabled        = "backup_enabled"
	KeyBackupRetentionDays  = "backup_retention_days"
	KeyWeightTrendWindow    = "weight_trend_window"
	KeyAnalyticsDefaultDays = "analytics_default_days"
	KeyPlanStrategy         = "plan_strategy"
	KeyPlanLastStrategy     = "plan_last_strategy"
	KeyPlanMealSlots        = "plan_meal_slots"
)

// StrategyRotate is the plan_strategy value that cycles through every strategy
const StrategyRotate = "rotate"

// SettingDefaults holds all default values for configurable settings
var SettingDefaults = map[string]interface{}{
	// Planning and scoring
	KeyCalorieTolerance:    0.10, // Allowed relative deviation from the calorie target
	KeyBestValuePercentile: 0.75, // Calorie-efficiency percentile for the BestValue badge
	KeyHighProteinRatio:    0.30, // Share of calories from protein for the HighProtein badge
	KeyPlanStrategy:        StrategyRotate,
	KeyPlanLastStrategy:    "", // Set by the planner while rotating
	KeyPlanMealSlots:       1.0,

	// Daily targets
	KeyDailyBudget:      50.0, // Currency units per day
	KeyDailyCalorieGoal: 0.0,  // 0 = derive from the profile
	KeyMealsPerDay:      3.0,

	// Profile
	KeyGender:           "M",
	KeyAge:              20.0,
	KeyHeightCm:         170.0,
	KeyWeightKg:         70.0,
	KeyGoalWeightKg:     70.0,
	KeyBodyFatPct:       0.0, // 0 = unknown
	KeyActivityLevel:    "Sedentary",
	KeyCity:             "",
	KeyLocationCategory: "metro",

	// Hydration
	KeyHydrationGoalCups: 8.0,

	// Housekeeping
	KeyDayCacheTTLHours:     24.0,
	KeyPlanTTLHours:         24.0,
	KeyBackupEnabled:        0.0, // 1.0 = enabled
	KeyBackupRetentionDays:  30.0,
	KeyWeightTrendWindow:    7.0,
	KeyAnalyticsDefaultDays: 30.0,
}

// StringSettings defines which settings should be treated as strings rather than floats
var StringSettings = map[string]bool{
	KeyGender:           true,
	KeyActivityLevel:    true,
	KeyCity:             true,
	KeyLocationCategory: true,
	KeyPlanStrategy:     true,
	KeyPlanLastStrategy: true,
}

// numericRange bounds a numeric setting, inclusive
type numericRange struct {
	Min, Max float64
}

// settingRanges holds the accepted range of each numeric setting
var settingRanges = map[string]numericRange{
	KeyCalorieTolerance:     {0.01, 0.5},
	KeyBestValuePercentile:  {0.01, 1},
	KeyHighProteinRatio:     {0, 0.99},
	KeyDailyBudget:          {1, 100000},
	KeyDailyCalorieGoal:     {0, 5000},
	KeyMealsPerDay:          {1, 6},
	KeyAge:                  {1, 120},
	KeyHeightCm:             {50, 260},
	KeyWeightKg:             {20, 400},
	KeyGoalWeightKg:         {20, 400},
	KeyBodyFatPct:           {0, 70},
	KeyHydrationGoalCups:    {1, 30},
	KeyDayCacheTTLHours:     {1, 24 * 30},
	KeyPlanTTLHours:         {1, 24 * 30},
	KeyBackupEnabled:        {0, 1},
	KeyBackupRetentionDays:  {0, 3650},
	KeyWeightTrendWindow:    {2, 60},
	KeyAnalyticsDefaultDays: {1, 365},
	KeyPlanMealSlots:        {0, 1},
}

// allowedValues restricts enumerated string settings; an empty value is always rejected for these keys
var allowedValues = map[string][]string{
	KeyGender:           {"M", "F"},
	KeyActivityLevel:    {"Sedentary", "Light", "Moderate", "Active", "Extremely Active"},
	KeyLocationCategory: {"metro", "major_city", "regional", "provincial", "rural"},
	KeyPlanStrategy:     append([]string{StrategyRotate}, strategyNames()...),
	KeyPlanLastStrategy: strategyNames(),
}

func strategyNames() []string {
	names := make([]string, len(domain.PlanStrategies))
	for i, s := range domain.PlanStrategies {
		names[i] = string(s)
	}
	return names
}

// SettingDescriptions holds human-readable descriptions for all settings
var SettingDescriptions = map[string]string{
	KeyCalorieTolerance:     "Allowed relative deviation of a generated plan from the calorie target (0.10 = 10%)",
	KeyBestValuePercentile:  "Calorie-efficiency percentile a food must reach to earn the BestValue badge",
	KeyHighProteinRatio:     "Share of calories from protein a food must exceed to earn the HighProtein badge",
	KeyDailyBudget:          "Daily food budget in currency units",
	KeyDailyCalorieGoal:     "Explicit daily calorie goal; 0 derives it from the profile",
	KeyMealsPerDay:          "Default number of meals in a generated plan",
	KeyGender:               "Gender used by the BMR formula (M or F)",
	KeyAge:                  "Age in years",
	KeyHeightCm:             "Height in centimeters",
	KeyWeightKg:             "Current weight in kilograms",
	KeyGoalWeightKg:         "Goal weight in kilograms",
	KeyBodyFatPct:           "Body fat percentage; when set the Katch-McArdle formula is used",
	KeyActivityLevel:        "Activity level (Sedentary, Light, Moderate, Active, Extremely Active)",
	KeyCity:                 "City, used to derive the location category",
	KeyLocationCategory:     "Location price category (metro, major_city, regional, provincial, rural) when no city is set",
	KeyHydrationGoalCups:    "Daily water goal in cups",
	KeyDayCacheTTLHours:     "Hours a cached day aggregate stays valid",
	KeyPlanTTLHours:         "Hours a pending plan stays applicable before it expires",
	KeyBackupEnabled:        "1.0 enables the scheduled S3 backup",
	KeyBackupRetentionDays:  "Days to keep backups in S3 (0 = keep forever)",
	KeyWeightTrendWindow:    "Number of weigh-ins in the weight trend moving average",
	KeyAnalyticsDefaultDays: "Default window of the financial analytics report in days",
	KeyPlanStrategy:         "Plan strategy (rotate, balanced, high_protein, budget_saver, high_energy); rotate cycles per plan",
	KeyPlanLastStrategy:     "Strategy of the last rotated plan",
	KeyPlanMealSlots:        "1.0 splits plan calories over breakfast, lunch, dinner and snacks and prefers foods of the slot's meal type",
}

// SettingUpdate represents a setting value update request
type SettingUpdate struct {
	Value interface{} `json:"value"`
}
