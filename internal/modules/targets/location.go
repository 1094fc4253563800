package targets

import "strings"

// Location price categories
const (
	CategoryMetro      = "metro"
	CategoryMajorCity  = "major_city"
	CategoryRegional   = "regional"
	CategoryProvincial = "provincial"
	CategoryRural      = "rural"
)

var locationMultipliers = map[string]float64{
	CategoryMetro:      1.0,
	CategoryMajorCity:  0.95,
	CategoryRegional:   0.88,
	CategoryProvincial: 0.80,
	CategoryRural:      0.70,
}

var cityCategories = map[string]string{
	"cairo":           CategoryMetro,
	"giza":            CategoryMetro,
	"new cairo":       CategoryMetro,
	"6th of october":  CategoryMetro,
	"nasr city":       CategoryMetro,
	"heliopolis":      CategoryMetro,
	"maadi":           CategoryMetro,
	"shubra":          CategoryMetro,
	"helwan":          CategoryMetro,
	"alexandria":      CategoryMajorCity,
	"port said":       CategoryMajorCity,
	"suez":            CategoryMajorCity,
	"ismailia":        CategoryMajorCity,
	"mansoura":        CategoryMajorCity,
	"tanta":           CategoryRegional,
	"zagazig":         CategoryRegional,
	"damanhour":       CategoryRegional,
	"kafr el sheikh":  CategoryRegional,
	"shibin el kom":   CategoryRegional,
	"damietta":        CategoryRegional,
	"benha":           CategoryRegional,
	"aswan":           CategoryProvincial,
	"luxor":           CategoryProvincial,
	"sohag":           CategoryProvincial,
	"qena":            CategoryProvincial,
	"minya":           CategoryProvincial,
	"beni suef":       CategoryProvincial,
	"fayoum":          CategoryProvincial,
	"asyut":           CategoryProvincial,
	"marsa matrouh":   CategoryProvincial,
	"el arish":        CategoryProvincial,
	"hurghada":        CategoryProvincial,
	"sharm el sheikh": CategoryProvincial,
}

// Categories lists the known location categories from most to least expensive
func Categories() []string {
	return []string{CategoryMetro, CategoryMajorCity, CategoryRegional, CategoryProvincial, CategoryRural}
}

// CityCategory maps a city name to its price category; unknown cities price as metro
func CityCategory(city string) string {
	if c, ok := cityCategories[strings.ToLower(strings.TrimSpace(city))]; ok {
		return c
	}
	return CategoryMetro
}

// LocationMultiplier returns the price multiplier for a category, 1.0 when unknown
func LocationMultiplier(category string) float64 {
	if m, ok := locationMultipliers[category]; ok {
		return m
	}
	return 1.0
}
