package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sem-Five-Project/edimy/models"
)

func TestClassTypeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, ClassTypeMultiplier(models.ClassTypeOneTime))
	assert.Equal(t, 0.95, ClassTypeMultiplier(models.ClassTypeWeekly))
	assert.Equal(t, 0.90, ClassTypeMultiplier(models.ClassTypeMonthly))
	assert.Equal(t, 1.0, ClassTypeMultiplier("bogus"))
}

func TestCalculateSessionPrice(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		hours     float64
		classType string
		want      float64
	}{
		{"one hour one-time", 2000, 1, models.ClassTypeOneTime, 2000},
		{"ninety minutes one-time", 2000, 1.5, models.ClassTypeOneTime, 3000},
		{"weekly discount", 2000, 1, models.ClassTypeWeekly, 1900},
		{"monthly discount", 2000, 1, models.ClassTypeMonthly, 1800},
		{"fractional result", 1500, 1.5, models.ClassTypeWeekly, 2137.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CalculateSessionPrice(tc.rate, tc.hours, tc.classType), 0.01)
		})
	}
}

func TestCalculateMonthlyPrice(t *testing.T) {
	monthly := &models.MonthlyClassBooking{TotalCost: 8000}
	assert.InDelta(t, 7200.0, CalculateMonthlyPrice(monthly, models.ClassTypeMonthly), 1e-9)
	assert.Zero(t, CalculateMonthlyPrice(nil, models.ClassTypeMonthly))
}
