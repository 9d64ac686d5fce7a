// Package dates turns the heterogeneous date values found in transaction rows into instants.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Parser attempts one format; it returns false when the value is not in that format.
type Parser func(s string, loc *time.Location) (time.Time, bool)

var slashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

// Layouts tried after the day-first slash form. Zone-less layouts are read in the normalizer's location.
var Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalizer parses date values through an ordered chain of parsers.
type Normalizer struct {
	Location *time.Location
	parsers  []Parser
}

// NewNormalizer returns the standard chain reading zone-less values in loc.
// A nil loc means time.Local.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		Location: loc,
		parsers:  []Parser{ParseDayFirst, ParseLayouts, ParseGeneric},
	}
}

// Normalize returns the instant for v and true, or false when v is not a usable date.
// Unparseable is not an error; callers exclude such values from date logic.
func (n *Normalizer) Normalize(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		return n.NormalizeString(t)
	case *string:
		if t == nil {
			return time.Time{}, false
		}
		return n.NormalizeString(*t)
	default:
		return time.Time{}, false
	}
}

// NormalizeString runs the parser chain over s.
func (n *Normalizer) NormalizeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, parse := range n.parsers {
		if t, ok := parse(s, n.Location); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDayFirst reads DD/MM/YYYY with an optional HH:mm[:ss] from explicit components.
// Out-of-range components are rejected instead of rolling over.
func ParseDayFirst(s string, loc *time.Location) (time.Time, bool) {
	m := slashPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour := atoiOrZero(m[4])
	minute := atoiOrZero(m[5])
	second := atoiOrZero(m[6])

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// ParseLayouts tries each entry of Layouts.
func ParseLayouts(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseGeneric is the last resort for any other calendar string.
func ParseGeneric(s string, loc *time.Location) (time.Time, bool) {
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
