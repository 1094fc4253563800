package journal

import (
	"github.com/aristath/nutriplan/internal/domain"
)

// EntryInput is a food log request
type EntryInput struct {
	Date      string              `json:"date"`
	FoodID    string              `json:"food_id"`
	Source    domain.Source       `json:"source"`
	Unit      domain.QuantityUnit `json:"unit"`
	PrepStyle domain.PrepStyle    `json:"prep_style"`
	Quantity  float64             `json:"quantity"`
}

// TimelineDay is one date of the cheat-day timeline
type TimelineDay struct {
	Date    string           `json:"date"`
	Status  domain.DayStatus `json:"status"`
	IsToday bool             `json:"is_today"`
}

// HistoryItem is a logged entry resolved against the catalog
type HistoryItem struct {
	Entry     domain.LoggedEntry      `json:"entry"`
	FoodName  string                  `json:"food_name"`
	Nutrition *domain.ScaledNutrition `json:"nutrition,omitempty"` // nil when the food is gone
}

// DailySpend is one day of the financial report
type DailySpend struct {
	Date     string  `json:"date"`
	Spend    float64 `json:"spend"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
}

// FinancialReport summarizes spending over a trailing window of days
type FinancialReport struct {
	Start              string             `json:"start"`
	End                string             `json:"end"`
	EfficiencyLabel    string             `json:"efficiency_label"`
	SourceBreakdown    map[string]float64 `json:"source_breakdown"` // percent of entries per source
	Daily              []DailySpend       `json:"daily"`
	Days               int                `json:"days"`
	LoggedDays         int                `json:"logged_days"`
	TotalSpend         float64            `json:"total_spend"`
	TotalCalories      float64            `json:"total_calories"`
	TotalProteinG      float64            `json:"total_protein_g"`
	AverageDailySpend  float64            `json:"average_daily_spend"`
	SpendStdDev        float64            `json:"spend_std_dev"`
	CaloriesPerUnit    float64            `json:"calories_per_unit"`
	CostPerProteinGram float64            `json:"cost_per_protein_gram"`
	SkippedEntries     int                `json:"skipped_entries"`
}

// Efficiency labels of the financial report
const (
	EfficiencyHigh     = "High"
	EfficiencyModerate = "Moderate"

	// highEfficiencyCostPerProtein is the cost per protein gram under which spending counts as efficient
	highEfficiencyCostPerProtein = 0.5
)
