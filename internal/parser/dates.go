package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slashParts = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	textParts  = regexp.MustCompile(`(?i)^(\d{1,2})[\s-]+([a-z]{3})[a-z]*(?:[\s-]+(\d{2,4}))?$`)
	isoParts   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// dateToken is a parsed but not yet year-resolved statement date.
type dateToken struct {
	day     int
	month   time.Month
	year    int // 0 when the token carries no year
	hasYear bool
}

func parseDateToken(s string) (dateToken, bool) {
	s = strings.TrimSpace(s)
	if m := slashParts.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		if mo < 1 || mo > 12 {
			return dateToken{}, false
		}
		return dateToken{day: d, month: time.Month(mo), year: expandYear(m[3]), hasYear: true}, true
	}
	if m := isoParts.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo < 1 || mo > 12 {
			return dateToken{}, false
		}
		return dateToken{day: d, month: time.Month(mo), year: y, hasYear: true}, true
	}
	if m := textParts.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, ok := monthsByPrefix[strings.ToLower(m[2])]
		if !ok {
			return dateToken{}, false
		}
		tok := dateToken{day: d, month: mo}
		if m[3] != "" {
			tok.year, tok.hasYear = expandYear(m[3]), true
		}
		return tok, true
	}
	return dateToken{}, false
}

// expandYear maps two-digit years onto 2000-2099.
func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

// validDate builds a UTC date, rejecting values time.Date would normalise
// (31 Feb, day 0 and so on).
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 1900 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// yearResolver assigns years to year-less dates. Statements run forwards in
// time, so a month earlier than the previous row's month moves into the next
// year, even when the months in between have no rows.
type yearResolver struct {
	year      int
	lastMonth time.Month
}

func (r *yearResolver) resolve(s string) (time.Time, bool) {
	tok, ok := parseDateToken(s)
	if !ok {
		return time.Time{}, false
	}
	if tok.hasYear {
		t, ok := validDate(tok.year, tok.month, tok.day)
		if ok {
			r.year, r.lastMonth = tok.year, tok.month
		}
		return t, ok
	}
	if r.year == 0 {
		return time.Time{}, false
	}
	if r.lastMonth != 0 && tok.month < r.lastMonth {
		r.year++
	}
	r.lastMonth = tok.month
	return validDate(r.year, tok.month, tok.day)
}

// statementYear picks the year that year-less dates start from: the first
// date in the statement period, otherwise the first plausible year anywhere
// in the text. Zero means no year could be found.
func statementYear(period, text string) int {
	if period != "" {
		first := strings.SplitN(period, " to ", 2)[0]
		if tok, ok := parseDateToken(first); ok && tok.hasYear {
			return tok.year
		}
	}
	if m := yearPattern.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return 0
}
