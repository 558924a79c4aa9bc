package mealdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// MsgRequired is the message returned when year or month is empty.
	MsgRequired = "year and month are required"

	dateLayout = "20060102"
)

var (
	yearRe  = regexp.MustCompile(`^\d{4}$`)
	monthRe = regexp.MustCompile(`^\d{1,2}$`)
)

// ValidationError reports unusable year/month input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DateRange holds the first and last service dates of a month in YYYYMMDD form.
type DateRange struct {
	From string
	To   string
}

// BuildRange computes the date range covering the given month.
func BuildRange(year, month string) (DateRange, error) {
	year = strings.TrimSpace(year)
	month = strings.TrimSpace(month)
	if year == "" || month == "" {
		return DateRange{}, &ValidationError{Message: MsgRequired}
	}

	y, m, err := parse(year, month)
	if err != nil {
		return DateRange{}, err
	}

	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	last := time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC)

	return DateRange{
		From: first.Format(dateLayout),
		To:   last.Format(dateLayout),
	}, nil
}

// PaddedMonth returns month zero-padded to two digits. Input that is not a
// plain numeral is returned trimmed but otherwise untouched.
func PaddedMonth(month string) string {
	month = strings.TrimSpace(month)
	n, err := strconv.Atoi(month)
	if err != nil || !monthRe.MatchString(month) {
		return month
	}
	return fmt.Sprintf("%02d", n)
}

// LastDay returns the number of days in the given month.
func LastDay(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parse(year, month string) (int, int, error) {
	if !yearRe.MatchString(year) {
		return 0, 0, &ValidationError{Message: "year must be a 4-digit number"}
	}
	if !monthRe.MatchString(month) {
		return 0, 0, &ValidationError{Message: "month must be between 1 and 12"}
	}

	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	if m < 1 || m > 12 {
		return 0, 0, &ValidationError{Message: "month must be between 1 and 12"}
	}
	return y, m, nil
}
