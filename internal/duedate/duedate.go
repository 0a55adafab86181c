// Package duedate projects a tenant's next rent due date from the day of
// month they pay on. Everything here is pure: results depend only on the
// arguments and are recomputed on every read.
package duedate

import (
	"fmt"
	"time"
)

type Policy string

const (
	// Advance moves a due date that has already passed this month to the
	// same day next month, so days left is never negative.
	Advance Policy = "advance"
	// Overdue keeps the current month's due date, so a passed date shows
	// up as a negative days left.
	Overdue Policy = "overdue"
)

// DefaultWindow is the H-7 reminder window in days.
const DefaultWindow = 7

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Advance, Overdue:
		return Policy(s), nil
	case "":
		return Advance, nil
	}
	return "", fmt.Errorf("unknown due policy %q", s)
}

type Projection struct {
	NextDueDate time.Time `json:"next_due_date"`
	DaysLeft    int       `json:"days_left"`
	StatusText  string    `json:"status_text"`
	Reminder    bool      `json:"reminder"`
}

// Project computes the next due date for dueDay relative to today. Only
// the calendar date of today is used; its location decides which day it
// is. window is the reminder threshold in days.
func Project(dueDay int, today time.Time, policy Policy, window int) Projection {
	today = Date(today)
	y, m, _ := today.Date()

	next := clamp(y, m, dueDay, today.Location())
	if policy != Overdue && next.Before(today) {
		next = clamp(y, m+1, dueDay, today.Location())
	}

	days := DaysBetween(today, next)
	return Projection{
		NextDueDate: next,
		DaysLeft:    days,
		StatusText:  StatusText(days),
		Reminder:    days <= window,
	}
}

func StatusText(daysLeft int) string {
	if daysLeft < 0 {
		return fmt.Sprintf("Overdue by %d day(s)", -daysLeft)
	}
	return fmt.Sprintf("Due in %d day(s)", daysLeft)
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the signed number of calendar days from a to b.
// Both are reduced to dates first, and the difference is taken in UTC so
// DST shifts cannot produce a 23 or 25 hour day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// MonthRange returns the first instant of t's month and of the month after.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}

// clamp builds y-m-day, pulling day back to the month's last day when the
// month is shorter. m may be 13; time.Date normalises it.
func clamp(y int, m time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}
