package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterAll is the wire value meaning "do not filter on this field".
const FilterAll = "all"

// Filter narrows the dashboard. Nil Month/Year and empty Kind/Category mean "all".
type Filter struct {
	Month    *int
	Year     *int
	Kind     TransactionKind
	Category string
}

// DefaultFilter is the dashboard's initial state: the current month and year, any kind and category.
func DefaultFilter(now time.Time) Filter {
	month := int(now.Month())
	year := now.Year()
	return Filter{Month: &month, Year: &year}
}

// ParseFilter builds a Filter from its wire representation.
// Each value is either "all" or a concrete value; an empty string also means "all".
func ParseFilter(month, year, kind, category string) (Filter, error) {
	var f Filter

	if m := strings.TrimSpace(month); m != "" && m != FilterAll {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			return Filter{}, fmt.Errorf("invalid month %q: must be 'all' or 1-12", month)
		}
		f.Month = &v
	}

	if y := strings.TrimSpace(year); y != "" && y != FilterAll {
		v, err := strconv.Atoi(y)
		if err != nil || v < 1 || v > 9999 {
			return Filter{}, fmt.Errorf("invalid year %q: must be 'all' or YYYY", year)
		}
		f.Year = &v
	}

	if k := strings.TrimSpace(kind); k != "" && k != FilterAll {
		parsed, ok := ParseKind(k)
		if !ok {
			return Filter{}, fmt.Errorf("invalid kind %q: must be 'all', 'expense' or 'income'", kind)
		}
		f.Kind = parsed
	}

	if c := strings.TrimSpace(category); c != "" && c != FilterAll {
		f.Category = c
	}

	return f, nil
}

// MonthString renders the month the way the wire format does.
func (f Filter) MonthString() string {
	if f.Month == nil {
		return FilterAll
	}
	return strconv.Itoa(*f.Month)
}

// YearString renders the year the way the wire format does.
func (f Filter) YearString() string {
	if f.Year == nil {
		return FilterAll
	}
	return strconv.Itoa(*f.Year)
}

// KindString renders the kind the way the wire format does.
func (f Filter) KindString() string {
	if f.Kind == "" {
		return FilterAll
	}
	return string(f.Kind)
}

// CategoryString renders the category the way the wire format does.
func (f Filter) CategoryString() string {
	if f.Category == "" {
		return FilterAll
	}
	return f.Category
}
