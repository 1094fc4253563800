package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/nutriplan/internal/domain"
)

// FeedCategory groups feed items by the meal they suit
type FeedCategory string

const (
	FeedBreakfast FeedCategory = "breakfast"
	FeedLunch     FeedCategory = "lunch"
	FeedDinner    FeedCategory = "dinner"
	FeedSnack     FeedCategory = "snack"
	FeedAppetizer FeedCategory = "appetizer"
)

// Feed tags
const (
	TagBestValue = "Best Value"
	TagStandard  = "Standard"
)

// BestValueEfficiency is the calorie efficiency above which a food is tagged Best Value
// even without the percentile badge
const BestValueEfficiency = 50.0

var feedOrder = []FeedCategory{FeedBreakfast, FeedLunch, FeedDinner, FeedSnack, FeedAppetizer}

// Name keywords used when a food has no usable meal type
var (
	snackKeywords     = []string{"basbousa", "zalabya", "om_ali", "om ali", "pudding", "halawa", "honey", "sweet", "konafa", "kunafa", "chocolate", "cake", "biscuit", "cookie", "fruit"}
	appetizerKeywords = []string{"salad", "tursi", "pickle", "baba", "tahina", "soup", "coleslaw", "dip", "chips", "fries", "sambousek"}
	breakfastKeywords = []string{"foul", "tameya", "taameya", "beid", "egg", "omelette", "shakshuka", "cheese", "falafel", "breakfast", "toast", "sandwich"}
)

// FeedItem is one recommendation of the smart feed
type FeedItem struct {
	Food              domain.FoodItem `json:"food"`
	Categories        []FeedCategory  `json:"categories"`
	Badges            []domain.Badge  `json:"badges"`
	Tag               string          `json:"tag"`
	CalorieEfficiency float64         `json:"calorie_efficiency"`
}

// ParseFeedCategory validates a category filter; empty means all categories
func ParseFeedCategory(s string) (FeedCategory, error) {
	c := FeedCategory(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", nil
	}
	for _, known := range feedOrder {
		if c == known {
			return c, nil
		}
	}
	return "", domain.NewValidationError("category", fmt.Sprintf("unknown feed category %q", s))
}

// Categorize returns the feed categories of a food, from its meal type when
// known and from keywords in its id and name otherwise. Lunch and dinner
// foods always appear under both.
func Categorize(food domain.FoodItem) []FeedCategory {
	switch strings.ToLower(strings.TrimSpace(food.MealType)) {
	case "breakfast":
		return []FeedCategory{FeedBreakfast}
	case "lunch", "dinner":
		return []FeedCategory{FeedLunch, FeedDinner}
	case "snack", "dessert":
		return []FeedCategory{FeedSnack}
	case "appetizer", "side":
		return []FeedCategory{FeedAppetizer}
	}

	text := strings.ToLower(food.ID + " " + food.Name)
	var cats []FeedCategory
	switch {
	case containsAny(text, snackKeywords):
		cats = append(cats, FeedSnack)
	case containsAny(text, appetizerKeywords):
		cats = append(cats, FeedAppetizer)
	}
	if len(cats) == 0 && containsAny(text, breakfastKeywords) {
		cats = append(cats, FeedBreakfast)
	}
	if len(cats) == 0 {
		cats = []FeedCategory{FeedLunch, FeedDinner}
	}
	return cats
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// BuildFeed turns a scored catalog into the smart feed, most calories per
// currency unit first. Foods without a positive price are left out. A
// non-empty category keeps only the items filed under it.
func BuildFeed(foods []domain.ScoredFood, category FeedCategory) []FeedItem {
	items := make([]FeedItem, 0, len(foods))
	for _, sf := range foods {
		if !sf.EfficiencyDefined {
			continue
		}
		cats := Categorize(sf.Food)
		if category != "" && !hasCategory(cats, category) {
			continue
		}
		tag := TagStandard
		if sf.HasBadge(domain.BadgeBestValue) || sf.CalorieEfficiency > BestValueEfficiency {
			tag = TagBestValue
		}
		items = append(items, FeedItem{
			Food:              sf.Food,
			Categories:        cats,
			Badges:            sf.Badges,
			Tag:               tag,
			CalorieEfficiency: sf.CalorieEfficiency,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CalorieEfficiency != b.CalorieEfficiency {
			return a.CalorieEfficiency > b.CalorieEfficiency
		}
		if a.Food.Price != b.Food.Price {
			return a.Food.Price < b.Food.Price
		}
		return a.Food.Name < b.Food.Name
	})
	return items
}

func hasCategory(cats []FeedCategory, c FeedCategory) bool {
	for _, have := range cats {
		if have == c {
			return true
		}
	}
	return false
}

// Feed builds the smart feed from the current scored catalog.
// category is one of breakfast, lunch, dinner, snack or appetizer; empty lists all.
func (s *Service) Feed(ctx context.Context, category string) ([]FeedItem, error) {
	cat, err := ParseFeedCategory(category)
	if err != nil {
		return nil, err
	}
	scored, err := s.Scored(ctx)
	if err != nil {
		return nil, err
	}
	items := BuildFeed(scored.Foods, cat)
	s.log.Debug().Str("category", string(cat)).Int("items", len(items)).Msg("Smart feed built")
	return items, nil
}
