package importer

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidDate is returned by ParseDate when no accepted format matches.
var ErrInvalidDate = errors.New("unrecognized date")

var (
	yearFirstDate = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)
	dayFirstDate  = regexp.MustCompile(`^\d{2}[-/]\d{2}[-/]\d{4}$`)
	dateSep       = regexp.MustCompile(`[-/]`)
)

const isoDate = "2006-01-02"

// fallbackLayouts are tried in order after the two numeric forms.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"02.01.2006",
	"Mon, 2 Jan 2006",
	"Mon Jan 2 2006",
}

// ParseDate turns a date cell into a UTC midnight (or the given instant for
// timestamps). It tries, in order: YYYY-MM-DD or YYYY/MM/DD, DD-MM-YYYY or
// DD/MM/YYYY, then a fixed list of textual and timestamp layouts.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, ErrInvalidDate
	}

	if yearFirstDate.MatchString(v) {
		d, err := time.Parse(isoDate, strings.ReplaceAll(v, "/", "-"))
		if err != nil {
			return time.Time{}, ErrInvalidDate
		}
		return d, nil
	}

	if dayFirstDate.MatchString(v) {
		parts := dateSep.Split(v, 3)
		d, err := time.Parse(isoDate, parts[2]+"-"+parts[1]+"-"+parts[0])
		if err != nil {
			return time.Time{}, ErrInvalidDate
		}
		return d, nil
	}

	for _, layout := range fallbackLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
