// Package dateutils provides the date parsing used when normalizing bank
// and card exports. US exports are the common case, so month-first layouts
// win when a date is ambiguous; day-first layouts are only reached when
// the month slot is impossible.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts for the formats that matter everywhere else in the pipeline.
const (
	DateLayoutISO  = "2006-01-02"
	DateLayoutUS   = "1/2/2006"
	DateLayoutFull = "2006-01-02 15:04:05"
)

// CommonFormats is the ordered list of layouts ParseDate tries. Order is
// significant: month-first before day-first resolves ambiguous slash
// dates the US way.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutUS, // also accepts zero-padded 01/02/2006
	"1/2/06",
	"1-2-2006",
	"2/1/2006", // day-first, reached only when the month slot exceeds 12
	"2006/01/02",
	DateLayoutFull,
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

var (
	slashDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// ParseDate parses a raw date cell using CommonFormats.
func ParseDate(raw string) (time.Time, error) {
	return ParseDateWithLayouts(raw, nil)
}

// ParseDateWithLayouts parses a raw date cell, trying the caller's layouts
// first and then CommonFormats. Format profiles use this to pin a bank's
// exact layout while keeping the fallback behavior.
func ParseDateWithLayouts(raw string, layouts []string) (time.Time, error) {
	cleaned := CleanDateString(raw)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// CleanDateString trims a date cell and collapses repeated whitespace.
func CleanDateString(raw string) string {
	raw = strings.TrimSpace(raw)
	return whitespaceRuns.ReplaceAllString(raw, " ")
}

// LooksLikeSlashDate reports whether a cell is a bare slash-separated date
// such as "03/15/2024". The normalizer uses this to recognize exports
// whose data rows are shifted relative to their header row.
func LooksLikeSlashDate(cell string) bool {
	cell = strings.TrimSpace(cell)
	if !slashDatePattern.MatchString(cell) {
		return false
	}
	_, err := ParseDate(cell)
	return err == nil
}

// ToISODate formats a date as YYYY-MM-DD, the form used by fingerprints
// and the store.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
