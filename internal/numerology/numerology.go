// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package numerology computes life-path, personal-year and personal-month
// numbers from a birth date. Everything here is pure arithmetic.
package numerology

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// masterNumbers are never reduced further.
var masterNumbers = map[int]bool{11: true, 22: true, 33: true}

// IsMaster reports whether n is 11, 22 or 33.
func IsMaster(n int) bool {
	return masterNumbers[n]
}

// Reduce sums the decimal digits of n until the result is a single digit
// or a master number. A master number reached as an intermediate sum stops
// the reduction. Zero is outside the domain and is returned unchanged;
// LifePath never passes it.
func Reduce(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 && !masterNumbers[n] {
		sum := 0
		for n > 0 {
			sum += n % 10
			n /= 10
		}
		n = sum
	}
	return n
}

// LifePath strips every non-digit from date, sums the digits and reduces.
// The field order of the date does not matter. ok is false when date holds
// no digits or only zeros.
func LifePath(date string) (n int, ok bool) {
	sum, digits := 0, 0
	for _, c := range date {
		if c >= '0' && c <= '9' {
			sum += int(c - '0')
			digits++
		}
	}
	if digits == 0 || sum == 0 {
		return 0, false
	}
	return Reduce(sum), true
}

// PersonalYear is Reduce(birth day + birth month + reference year).
func PersonalYear(birth, ref time.Time) int {
	return Reduce(birth.Day() + int(birth.Month()) + ref.Year())
}

// PersonalMonth is Reduce(birth month + reference month).
func PersonalMonth(birth, ref time.Time) int {
	return Reduce(int(birth.Month()) + int(ref.Month()))
}

// PersonalMonthRange labels the calendar month containing ref,
// e.g. "1 October 2026 – 31 October 2026".
func PersonalMonthRange(ref time.Time) string {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return fmt.Sprintf("%s – %s", first.Format("2 January 2006"), last.Format("2 January 2006"))
}

// birthDateLayouts are tried in order. Day-first wins over month-first for
// ambiguous slash dates.
var birthDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"01/02/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseBirthDate accepts the date formats seen on the intake form.
func ParseBirthDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Compute derives the full profile for birthDate at now. The life path is
// computed from the raw digits even when the date cannot be parsed; the
// personal numbers need a parsed date and stay zero otherwise. ok is false
// when birthDate carries no nonzero digit.
func Compute(birthDate string, now time.Time) (types.NumerologyProfile, bool) {
	lp, ok := LifePath(birthDate)
	if !ok {
		return types.NumerologyProfile{}, false
	}

	p := types.NumerologyProfile{
		LifePath:           lp,
		LifePathMeaning:    LifePathMeaning(lp),
		PersonalMonthRange: PersonalMonthRange(now),
	}

	if birth, parsed := ParseBirthDate(birthDate); parsed {
		p.PersonalYear = PersonalYear(birth, now)
		p.PersonalMonth = PersonalMonth(birth, now)
		p.PersonalYearMeaning = PersonalYearMeaning(p.PersonalYear)
	}
	return p, true
}
