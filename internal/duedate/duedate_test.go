package duedate

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		dueDay   int
		today    string
		policy   Policy
		next     string
		days     int
		text     string
		reminder bool
	}{
		{"later this month", 5, "2026-02-20", Advance, "2026-03-05", 13, "Due in 13 day(s)", false},
		{"inside window", 5, "2026-02-28", Advance, "2026-03-05", 5, "Due in 5 day(s)", true},
		{"due today", 5, "2026-02-05", Advance, "2026-02-05", 0, "Due in 0 day(s)", true},
		{"upcoming same month", 25, "2026-02-10", Advance, "2026-02-25", 15, "Due in 15 day(s)", false},
		{"exactly seven days", 17, "2026-02-10", Advance, "2026-02-17", 7, "Due in 7 day(s)", true},
		{"passed advances", 5, "2026-02-10", Advance, "2026-03-05", 23, "Due in 23 day(s)", false},
		{"passed stays overdue", 5, "2026-02-10", Overdue, "2026-02-05", -5, "Overdue by 5 day(s)", true},
		{"overdue policy upcoming", 25, "2026-02-10", Overdue, "2026-02-25", 15, "Due in 15 day(s)", false},
		{"31st clamps in february", 31, "2026-02-10", Advance, "2026-02-28", 18, "Due in 18 day(s)", false},
		{"31st clamps in leap february", 31, "2028-02-10", Advance, "2028-02-29", 19, "Due in 19 day(s)", false},
		{"last day of long month", 31, "2026-01-31", Advance, "2026-01-31", 0, "Due in 0 day(s)", true},
		{"advance into short month", 30, "2026-01-31", Advance, "2026-02-28", 28, "Due in 28 day(s)", false},
		{"advance over year end", 5, "2026-12-20", Advance, "2027-01-05", 16, "Due in 16 day(s)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(tt.dueDay, day(tt.today), tt.policy, DefaultWindow)
			assert.Equal(t, tt.next, p.NextDueDate.Format("2006-01-02"))
			assert.Equal(t, tt.days, p.DaysLeft)
			assert.Equal(t, tt.text, p.StatusText)
			assert.Equal(t, tt.reminder, p.Reminder)
		})
	}
}

func TestProject_IgnoresTimeOfDay(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	late := time.Date(2026, 2, 28, 23, 59, 0, 0, jakarta)
	p := Project(5, late, Advance, DefaultWindow)
	assert.Equal(t, 5, p.DaysLeft)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, jakarta), p.NextDueDate)
}

func TestProject_CustomWindow(t *testing.T) {
	p := Project(5, day("2026-02-20"), Advance, 14)
	assert.True(t, p.Reminder)

	p = Project(5, day("2026-02-28"), Advance, 3)
	assert.False(t, p.Reminder)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Advance, p)

	p, err = ParsePolicy("overdue")
	require.NoError(t, err)
	assert.Equal(t, Overdue, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	a := time.Date(2026, 3, 7, 0, 0, 0, 0, ny)
	b := time.Date(2026, 3, 9, 0, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(time.Date(2026, 12, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-12-01", from.Format("2006-01-02"))
	assert.Equal(t, "2027-01-01", to.Format("2006-01-02"))
}
