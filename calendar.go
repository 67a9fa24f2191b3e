package dca

import (
	"iter"

	"github.com/etnz/dca/date"
)

// Calendar resolves trading days from the sparse price series of a portfolio.
//
// A trading day is a calendar day on which every instrument has a price.
type Calendar struct {
	portfolio Portfolio
}

// NewCalendar returns a calendar over the portfolio price series.
func NewCalendar(p Portfolio) *Calendar { return &Calendar{portfolio: p} }

// IsDefined reports whether instrument i has a price on day.
func (c *Calendar) IsDefined(i int, day date.Date) bool {
	return c.portfolio[i].Prices != nil && c.portfolio[i].Prices.Has(day)
}

// isTradingDay reports whether every instrument has a price on day.
func (c *Calendar) isTradingDay(day date.Date) bool {
	for i := range c.portfolio {
		if !c.IsDefined(i, day) {
			return false
		}
	}
	return true
}

// FirstValidDay returns the first trading day on or after from.
//
// The search is unbounded: it never returns if the price series never become jointly
// defined after from. Callers must bound their input data (see CheckAlignment).
func (c *Calendar) FirstValidDay(from date.Date) date.Date {
	day := from
	for !c.isTradingDay(day) {
		day = day.Add(1)
	}
	return day
}

// LastTradingDay returns the latest day on which every instrument has a price.
// It returns false if there is none.
func (c *Calendar) LastTradingDay() (date.Date, bool) {
	if len(c.portfolio) == 0 || c.portfolio[0].Prices == nil {
		return date.Date{}, false
	}
	// Scan the first series backward, any trading day must be one of its days.
	h := c.portfolio[0].Prices
	days := make([]date.Date, 0, h.Len())
	for d := range h.Values() {
		days = append(days, d)
	}
	for i := len(days) - 1; i >= 0; i-- {
		if c.isTradingDay(days[i]) {
			return days[i], true
		}
	}
	return date.Date{}, false
}

// MonthlyTradingDays yields at most one trading day per calendar month, for months
// strictly after the month of the first trading day on or after start, and never after end.
//
// A cursor walks every calendar day from start to end. Each time it passes the last
// resolved trading day, the next trading day at or after the cursor is resolved, and
// emitted if it opens a new month. A data gap spanning several months therefore yields
// a single day, the first one priced after the gap.
func (c *Calendar) MonthlyTradingDays(start, end date.Date) iter.Seq[date.Date] {
	return func(yield func(date.Date) bool) {
		lastValid := c.FirstValidDay(start)
		prevMonth := lastValid
		for cursor := range date.NewRange(start, end).Each() {
			if !cursor.After(lastValid) {
				continue
			}
			lastValid = c.FirstValidDay(cursor)
			if lastValid.After(end) {
				return
			}
			if !lastValid.SameMonth(prevMonth) {
				if !yield(lastValid) {
					return
				}
				prevMonth = lastValid
			}
		}
	}
}
