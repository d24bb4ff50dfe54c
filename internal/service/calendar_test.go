package service

import (
	"testing"

	"famorders/internal/model"

	"github.com/stretchr/testify/assert"
)

func formatAll(p *model.RecurringPlan, year, month int) []string {
	var out []string
	for _, d := range planOccurrences(p, year, month) {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

func TestWeekdayIndex_MondayIsZero(t *testing.T) {
	assert.Equal(t, 0, weekdayIndex(day("2024-01-01"))) // Monday
	assert.Equal(t, 2, weekdayIndex(day("2024-01-03"))) // Wednesday
	assert.Equal(t, 6, weekdayIndex(day("2024-01-07"))) // Sunday
}

func TestMonthBounds(t *testing.T) {
	first, last := monthBounds(2024, 2)
	assert.Equal(t, "2024-02-01", first.Format(dateLayout))
	assert.Equal(t, "2024-02-29", last.Format(dateLayout))

	_, last = monthBounds(2023, 12)
	assert.Equal(t, "2023-12-31", last.Format(dateLayout))
}

func TestPlanOccurrences(t *testing.T) {
	tests := []struct {
		name  string
		dow   int
		start string
		end   *string
		want  []string
	}{
		{"every wednesday", 2, "2024-01-01", nil,
			[]string{"2024-01-03", "2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}},
		{"starts mid month", 2, "2024-01-15", nil,
			[]string{"2024-01-17", "2024-01-24", "2024-01-31"}},
		{"start on the weekday is inclusive", 2, "2024-01-10", nil,
			[]string{"2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}},
		{"ends mid month", 2, "2023-06-01", ptr("2024-01-17"),
			[]string{"2024-01-03", "2024-01-10", "2024-01-17"}},
		{"sunday", 6, "2024-01-01", nil,
			[]string{"2024-01-07", "2024-01-14", "2024-01-21", "2024-01-28"}},
		{"starts after month", 2, "2024-02-01", nil, nil},
		{"ended before month", 2, "2023-01-01", ptr("2023-12-31"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.RecurringPlan{DayOfWeek: tt.dow, StartDate: dateVal(tt.start)}
			if tt.end != nil {
				e := dateVal(*tt.end)
				p.EndDate = &e
			}
			got := formatAll(p, 2024, 1)
			assert.Equal(t, tt.want, got)
			for _, d := range planOccurrences(p, 2024, 1) {
				assert.Equal(t, tt.dow, weekdayIndex(d))
			}
		})
	}
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, validatePeriod(1, 2024))
	assert.NoError(t, validatePeriod(12, 2024))
	assert.ErrorIs(t, validatePeriod(0, 2024), ErrInvalidPeriod)
	assert.ErrorIs(t, validatePeriod(13, 2024), ErrInvalidPeriod)
}

func TestMonthlyPaymentNote(t *testing.T) {
	assert.Equal(t, "Pagamento Mensal - Janeiro 2024 (5 entregas)", monthlyPaymentNote(2024, 1, 5))
	assert.Equal(t, "Pagamento Mensal - Março 2025 (4 entregas)", monthlyPaymentNote(2025, 3, 4))
}

func TestBillingPeriod(t *testing.T) {
	assert.Equal(t, "2024-01", billingPeriod(2024, 1))
}
