package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LoanPeriodDays is the fixed borrowing period; dueDate = borrowedDate + LoanPeriodDays.
	LoanPeriodDays = 21

	LateReturnReason = "Late return"
)

// DailyLateRate is charged per book per whole day past the due date.
var DailyLateRate = decimal.RequireFromString("0.25")

// calendarDate drops the clock part, keeping t's own year/month/day.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DueDate(borrowed time.Time) time.Time {
	return calendarDate(borrowed).AddDate(0, 0, LoanPeriodDays)
}

// DaysLate is the number of whole calendar days between due and returned,
// never negative.
func DaysLate(due, returned time.Time) int {
	d := int(calendarDate(returned).Sub(calendarDate(due)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// LateFee = DailyLateRate × daysLate × books. Zero when nothing is late.
func LateFee(daysLate, books int) decimal.Decimal {
	if daysLate <= 0 || books <= 0 {
		return decimal.Zero
	}
	return DailyLateRate.
		Mul(decimal.NewFromInt(int64(daysLate))).
		Mul(decimal.NewFromInt(int64(books)))
}
