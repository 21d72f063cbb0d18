package booking

import (
	"math"

	"github.com/Sem-Five-Project/edimy/models"
)

// Class-type multipliers applied over the subject hourly rate. Recurring
// cadences are discounted relative to a one-time session.
var classTypeMultipliers = map[string]float64{
	models.ClassTypeOneTime: 1.0,
	models.ClassTypeWeekly:  0.95,
	models.ClassTypeMonthly: 0.90,
}

// ClassTypeMultiplier returns the pricing multiplier for a class type,
// defaulting to 1.0 for unknown values.
func ClassTypeMultiplier(classType string) float64 {
	if m, ok := classTypeMultipliers[classType]; ok {
		return m
	}
	return 1.0
}

// CalculateSessionPrice prices a single slot of the given length.
func CalculateSessionPrice(hourlyRate float64, durationHours float64, classType string) float64 {
	return round2(hourlyRate * durationHours * ClassTypeMultiplier(classType))
}

// CalculateMonthlyPrice applies the class-type multiplier over a monthly
// booking's expanded total (conflict weeks already contribute zero).
func CalculateMonthlyPrice(monthly *models.MonthlyClassBooking, classType string) float64 {
	if monthly == nil {
		return 0
	}
	return round2(monthly.TotalCost * ClassTypeMultiplier(classType))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
