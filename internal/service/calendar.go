package service

import (
	"fmt"
	"time"

	"famorders/internal/model"

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

var monthNamesPT = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// weekdayIndex maps a date to the plan convention 0=Monday … 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// dateOnly drops the clock and pins the date to UTC midnight so it compares
// and binds identically on every store.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toDate(d datatypes.Date) time.Time { return dateOnly(time.Time(d)) }

func fromDate(t time.Time) datatypes.Date { return datatypes.Date(dateOnly(t)) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func formatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := toDate(*d).Format(dateLayout)
	return &s
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 1 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidPeriod, month, year)
	}
	return nil
}

// monthBounds returns the first and last calendar day of the month.
func monthBounds(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func billingPeriod(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// planOccurrences lists, ascending, every date of the month that falls on the
// plan's weekday and inside [StartDate, EndDate]. It is empty when the plan
// window does not overlap the month.
func planOccurrences(p *model.RecurringPlan, year, month int) []time.Time {
	first, last := monthBounds(year, month)
	start := toDate(p.StartDate)
	if start.After(last) {
		return nil
	}
	var end *time.Time
	if p.EndDate != nil {
		e := toDate(*p.EndDate)
		if e.Before(first) {
			return nil
		}
		end = &e
	}

	offset := (p.DayOfWeek - weekdayIndex(first) + 7) % 7
	var dates []time.Time
	for d := first.AddDate(0, 0, offset); !d.After(last); d = d.AddDate(0, 0, 7) {
		if d.Before(start) {
			continue
		}
		if end != nil && d.After(*end) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

func monthlyPaymentNote(year, month, deliveries int) string {
	return fmt.Sprintf("Pagamento Mensal - %s %d (%d entregas)", monthNamesPT[month-1], year, deliveries)
}

const deliveryNote = "Gerado automaticamente da subscrição mensal"
