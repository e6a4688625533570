package mondialrelay

import (
	"math"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
)

// FormatAddressLine collapses whitespace runs and trims a free-text
// address line before it goes on the wire.
func FormatAddressLine(line string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
}

// FormatPhoneForAPI reduces a phone number to digits and restores the
// leading zero of nine-digit French numbers.
func FormatPhoneForAPI(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 9 {
		return "0" + digits
	}
	return digits
}

// KgToGrams converts a weight in kilograms to whole grams.
func KgToGrams(kg float64) int {
	return int(math.Round(kg * 1000))
}

// EstimateShippingCost returns an indicative price in euros for a
// weight and delivery mode: a per-mode base plus 1.50 per started
// kilogram above the first. Real pricing comes from the merchant's
// carrier contract.
func EstimateShippingCost(weightGrams int, mode DeliveryMode) float64 {
	base := map[DeliveryMode]float64{
		ModeRelay:        4.90,
		ModeHome:         6.90,
		ModeRelayExpress: 7.90,
		ModeHomeNextDay:  8.90,
		ModeHomeSaturday: 9.90,
		ModeDrive:        5.90,
	}

	price, ok := base[mode]
	if !ok {
		price = 4.90
	}
	if weightGrams > 1000 {
		extraKg := math.Ceil(float64(weightGrams-1000) / 1000)
		price += extraKg * 1.50
	}
	return price
}
