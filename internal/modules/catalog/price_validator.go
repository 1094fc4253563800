package catalog

import (
	"github.com/rs/zerolog"
)

const (
	maxPriceMultiplier = 3.0    // Price > 3x the current price is suspicious
	minPriceMultiplier = 0.33   // Price < a third of the current price is suspicious
	absolutePriceMax   = 5000.0 // Absolute maximum price for one reference serving
)

// Price flags
const (
	FlagSpike       = "spike_detected"
	FlagCrash       = "crash_detected"
	FlagAboveMax    = "above_absolute_max"
	FlagZeroPrice   = "zero_price"
	FlagUnknownFood = "unknown_food"
)

// PriceValidator flags abnormal price submissions so reviewers can spot them.
// Flagged submissions stay in the queue; only a reviewer rejects them.
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// Check compares a submitted price with the current catalog price.
// currentPrice is 0 for foods not in the catalog yet.
// Returns (ok, flag).
func (v *PriceValidator) Check(submitted, currentPrice float64, known bool) (bool, string) {
	ok, flag := v.check(submitted, currentPrice, known)
	if !ok {
		v.log.Debug().
			Float64("submitted", submitted).
			Float64("current", currentPrice).
			Str("flag", flag).
			Msg("Price submission flagged")
	}
	return ok, flag
}

func (v *PriceValidator) check(submitted, currentPrice float64, known bool) (bool, string) {
	if !known {
		return false, FlagUnknownFood
	}
	if submitted == 0 {
		return false, FlagZeroPrice
	}
	if submitted > absolutePriceMax {
		return false, FlagAboveMax
	}
	if currentPrice > 0 {
		ratio := submitted / currentPrice
		if ratio > maxPriceMultiplier {
			return false, FlagSpike
		}
		if ratio < minPriceMultiplier {
			return false, FlagCrash
		}
	}
	return true, ""
}
